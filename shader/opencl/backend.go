package opencl

import (
	_ "embed"
	"fmt"
	"math"

	"github.com/achilleasa/go-relight/log"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/shader"
	"github.com/achilleasa/gopencl/v1.2/cl"
)

//go:embed shade.cl
var programSource string

// Floats per light in the packed struct-of-arrays uniform block. Must
// stay in sync with LIGHT_STRIDE in shade.cl.
const lightStride = 20

// Backend runs the deferred shading kernel on an OpenCL device. The
// backend exclusively owns its device buffers; geometry uploads replace
// their contents wholesale.
type Backend struct {
	device *Device
	kernel *Kernel
	logger log.Logger

	albedoBuf  *Buffer
	normalBuf  *Buffer
	depthBuf   *Buffer
	shadowBuf  *Buffer
	lightBuf   *Buffer
	frameBuf   *Buffer
	lightBlock []float32
	frameBytes []uint8

	width  int
	height int
}

// Create a backend on the given device, compiling the shading program.
// A nil device selects the fastest available one. Failures wrap
// shader.ErrBackendInit; they are fatal for the pipeline.
func NewBackend(device *Device) (*Backend, error) {
	var err error
	if device == nil {
		device, err = SelectBestDevice(AllDevices, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shader.ErrBackendInit, err)
		}
	}

	if err = device.Init(programSource); err != nil {
		return nil, fmt.Errorf("%w: %v", shader.ErrBackendInit, err)
	}

	kernel, err := device.Kernel("shadePixels")
	if err != nil {
		device.Close()
		return nil, fmt.Errorf("%w: %v", shader.ErrBackendInit, err)
	}

	b := &Backend{
		device:     device,
		kernel:     kernel,
		logger:     log.New(fmt.Sprintf("opencl shader (%s)", device.Name)),
		lightBlock: make([]float32, shader.MaxLights*lightStride),
	}
	b.albedoBuf = device.Buffer("albedo")
	b.normalBuf = device.Buffer("normals")
	b.depthBuf = device.Buffer("depth")
	b.shadowBuf = device.Buffer("shadow")
	b.lightBuf = device.Buffer("lights")
	b.frameBuf = device.Buffer("frame")

	return b, nil
}

// Get a backend description for logging/stats.
func (b *Backend) Id() string {
	return fmt.Sprintf("opencl (%s)", b.device.Name)
}

// Upload a complete geometry set, replacing any previous one.
func (b *Backend) UploadGeometry(geo *shader.Geometry) error {
	if geo.Albedo == nil || geo.Normals == nil || geo.Depth == nil {
		return shader.ErrNoGeometryUploaded
	}
	w, h := geo.Albedo.Width, geo.Albedo.Height
	if geo.Normals.Width != w || geo.Normals.Height != h || geo.Depth.Width != w || geo.Depth.Height != h {
		return shader.ErrGeometryMismatch
	}

	numPixels := w * h

	// float4 packing keeps the device-side loads aligned.
	albedoData := make([]float32, numPixels*4)
	normalData := make([]float32, numPixels*4)
	for i := 0; i < numPixels; i++ {
		albedoData[i*4] = geo.Albedo.Data[i][0]
		albedoData[i*4+1] = geo.Albedo.Data[i][1]
		albedoData[i*4+2] = geo.Albedo.Data[i][2]
		normalData[i*4] = geo.Normals.Data[i][0]
		normalData[i*4+1] = geo.Normals.Data[i][1]
		normalData[i*4+2] = geo.Normals.Data[i][2]
	}

	if err := b.albedoBuf.AllocateAndWriteData(albedoData, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	if err := b.normalBuf.AllocateAndWriteData(normalData, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	if err := b.depthBuf.AllocateAndWriteData(geo.Depth.Data, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	if err := b.lightBuf.Allocate(len(b.lightBlock)*4, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	if err := b.frameBuf.Allocate(numPixels*4, cl.MEM_WRITE_ONLY); err != nil {
		return err
	}

	b.width = w
	b.height = h
	b.frameBytes = make([]uint8, numPixels*4)

	shadow := geo.Shadow
	if shadow == nil {
		shadow = raster.NewUniformScalarField(w, h, 1.0)
	}
	if err := b.UploadShadow(shadow); err != nil {
		return err
	}

	b.logger.Debugf("uploaded %dx%d geometry", w, h)
	return nil
}

// Replace only the shadow buffer.
func (b *Backend) UploadShadow(shadow *raster.ScalarField) error {
	if b.width == 0 {
		return shader.ErrNoGeometryUploaded
	}
	if shadow.Width != b.width || shadow.Height != b.height {
		return shader.ErrGeometryMismatch
	}
	return b.shadowBuf.AllocateAndWriteData(shadow.Data, cl.MEM_READ_ONLY)
}

// Shade the current geometry under the given lights.
func (b *Backend) Shade(lights *shader.LightSet, params shader.Params, alphaFrom *raster.Image) (*raster.Image, error) {
	if b.width == 0 {
		return nil, shader.ErrNoGeometryUploaded
	}

	params = params.Clamp()
	b.packLights(lights)
	if err := b.lightBuf.WriteData(b.lightBlock, 0); err != nil {
		return nil, err
	}

	err := b.kernel.SetArgs(
		b.albedoBuf,
		b.normalBuf,
		b.depthBuf,
		b.shadowBuf,
		b.lightBuf,
		int32(lights.Count()),
		params.Ambient,
		params.Specularity,
		params.Glossiness,
		params.ShadowIntensity,
		int32(params.Blend),
		int32(b.width),
		int32(b.height),
		b.frameBuf,
	)
	if err != nil {
		return nil, err
	}

	if _, err = b.kernel.Exec2D(0, 0, b.width, b.height, 0, 0); err != nil {
		return nil, err
	}

	if err = b.frameBuf.ReadData(0, 0, 0, b.frameBytes); err != nil {
		return nil, err
	}

	pix := make([]uint8, len(b.frameBytes))
	copy(pix, b.frameBytes)
	if alphaFrom != nil {
		for i := 3; i < len(pix); i += 4 {
			pix[i] = alphaFrom.Pix[i]
		}
	}
	return &raster.Image{Width: b.width, Height: b.height, Pix: pix}, nil
}

// Pack the light set into the fixed struct-of-arrays uniform block
// consumed by the kernel. Spot cone angles are pre-converted to cosines
// on the host.
func (b *Backend) packLights(lights *shader.LightSet) {
	for i := range b.lightBlock {
		b.lightBlock[i] = 0
	}

	for li, light := range lights.Active() {
		ld := b.lightBlock[li*lightStride:]
		ld[0], ld[1], ld[2] = light.Position[0], light.Position[1], light.Position[2]
		ld[3] = float32(light.Type)
		ld[4], ld[5], ld[6] = light.Direction[0], light.Direction[1], light.Direction[2]
		ld[7] = light.Intensity
		ld[8], ld[9], ld[10] = light.Color[0], light.Color[1], light.Color[2]
		ld[11] = light.Reach
		ld[12] = light.Contrast
		ld[13] = light.Rim
		ld[14] = light.RimWidth
		ld[15] = light.Subsurface
		ld[16] = float32(math.Cos(float64(light.SpotAngle) * math.Pi / 180.0))
		ld[17] = float32(math.Cos(float64(light.SpotAngle) * float64(1.0-0.9*light.SpotSoftness) * math.Pi / 180.0))
	}
}

// Release all backend resources: buffers, kernel, program and context.
func (b *Backend) Close() {
	for _, buf := range []*Buffer{b.albedoBuf, b.normalBuf, b.depthBuf, b.shadowBuf, b.lightBuf, b.frameBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.kernel != nil {
		b.kernel.Release()
		b.kernel = nil
	}
	if b.device != nil {
		b.device.Close()
		b.device = nil
	}
	b.width = 0
	b.height = 0
}
