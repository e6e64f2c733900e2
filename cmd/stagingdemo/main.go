package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v2/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v2/khr_portability_subset"
	"github.com/vkngwrapper/staging"
	"github.com/vkngwrapper/staging/vulkan"
	"golang.org/x/exp/slog"
)

type application struct {
	instance       core1_0.Instance
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	physicalDevice core1_0.PhysicalDevice
	device         core1_0.Device
	transferFamily int
}

const validationLayerName = "VK_LAYER_KHRONOS_validation"

func logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	log.Printf("[%s %s] - %s", severity, msgType, data.Message)
	return false
}

func createApplication(validation bool) (*application, error) {
	loader, err := core.CreateSystemLoader()
	if err != nil {
		return nil, err
	}

	instanceExtensions, _, err := loader.AvailableExtensions()
	if err != nil {
		return nil, err
	}

	var instanceExtensionNames []string
	var flags core1_0.InstanceCreateFlags
	_, ok := instanceExtensions[khr_portability_enumeration.ExtensionName]
	if ok {
		instanceExtensionNames = append(instanceExtensionNames, khr_portability_enumeration.ExtensionName)
		flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	var layerNames []string
	_, hasDebugUtils := instanceExtensions[ext_debug_utils.ExtensionName]
	validation = validation && hasDebugUtils
	if validation {
		instanceExtensionNames = append(instanceExtensionNames, ext_debug_utils.ExtensionName)

		layers, _, err := loader.AvailableLayers()
		if err != nil {
			return nil, err
		}

		_, hasValidationLayer := layers[validationLayerName]
		if hasValidationLayer {
			layerNames = append(layerNames, validationLayerName)
		} else {
			log.Printf("%s is not installed, only driver messages will be logged", validationLayerName)
		}
	}

	instance, _, err := loader.CreateInstance(nil, core1_0.InstanceCreateInfo{
		ApplicationName:       "stagingdemo",
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            "staging",
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_0,
		EnabledExtensionNames: instanceExtensionNames,
		EnabledLayerNames:     layerNames,
		Flags:                 flags,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create instance")
	}

	app := &application{instance: instance}

	if validation {
		debugLoader := ext_debug_utils.CreateExtensionFromInstance(instance)
		app.debugMessenger, _, err = debugLoader.CreateDebugUtilsMessenger(instance, nil, ext_debug_utils.DebugUtilsMessengerCreateInfo{
			MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
			MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
			UserCallback:    logDebug,
		})
		if err != nil {
			app.destroy()
			return nil, errors.Wrap(err, "failed to create debug messenger")
		}
	}

	gpus, _, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		app.destroy()
		return nil, err
	}
	if len(gpus) == 0 {
		app.destroy()
		return nil, errors.New("no vulkan physical devices are present")
	}

	app.physicalDevice = gpus[0]

	// Graphics and compute queues implicitly support transfer
	app.transferFamily = -1
	for queueIndex, queueFamily := range app.physicalDevice.QueueFamilyProperties() {
		if queueFamily.QueueFlags&(core1_0.QueueGraphics|core1_0.QueueCompute|core1_0.QueueTransfer) != 0 {
			app.transferFamily = queueIndex
			break
		}
	}
	if app.transferFamily < 0 {
		app.destroy()
		return nil, errors.New("physical device has no queue family that supports transfers")
	}

	var deviceExtensionNames []string
	deviceExtensions, _, err := app.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		app.destroy()
		return nil, err
	}

	_, ok = deviceExtensions[khr_portability_subset.ExtensionName]
	if ok {
		deviceExtensionNames = append(deviceExtensionNames, khr_portability_subset.ExtensionName)
	}

	app.device, _, err = app.physicalDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: app.transferFamily,
				QueuePriorities:  []float32{0.0},
			},
		},
		EnabledExtensionNames: deviceExtensionNames,
	})
	if err != nil {
		app.destroy()
		return nil, errors.Wrap(err, "failed to create device")
	}

	return app, nil
}

func (app *application) destroy() {
	if app.device != nil {
		_, err := app.device.WaitIdle()
		if err != nil {
			log.Printf("failed to wait for device idle: %+v", err)
		}
		app.device.Destroy(nil)
	}
	if app.debugMessenger != nil {
		app.debugMessenger.Destroy(nil)
	}
	app.instance.Destroy(nil)
}

func uniformPayload(size int, seed byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = seed + byte(i)
	}
	return data
}

// runUniformBuffer creates a persistently staged 256-byte uniform buffer from a 64-byte
// payload, updates it in place, and then grows it past its capacity
func runUniformBuffer(logger *slog.Logger, device *staging.Device, allocator *vulkan.Allocator) (err error) {
	var uniforms staging.Buffer
	err = uniforms.CreateStagedPersistent(device, uniformPayload(64, 0), 256, core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly, true)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, uniforms.Destroy())
	}()

	uniforms.OnRecreate(func(buffer *staging.Buffer, previous staging.DescriptorView) {
		logger.Info("uniform buffer was recreated",
			slog.Int("PreviousRange", previous.Range),
			slog.Int("Range", buffer.Size()),
			slog.Int("Generation", buffer.Generation()),
		)
	})

	err = uniforms.UpdateData(uniformPayload(64, 100), true)
	if err != nil {
		return err
	}

	err = uniforms.UpdateData(uniformPayload(300, 200), true)
	if err != nil {
		return err
	}
	if uniforms.Size() < 300 {
		return errors.Newf("uniform buffer reports capacity %d after a 300-byte update", uniforms.Size())
	}

	infos, err := vulkan.DescriptorBufferInfos(allocator, []staging.DescriptorView{uniforms.DescriptorView()})
	if err != nil {
		return err
	}
	logger.Info("uniform descriptor", slog.Int("Offset", infos[0].Offset), slog.Int("Range", infos[0].Range))

	return nil
}

// runFrameRing updates one persistently mapped buffer per frame in flight and flushes them in a
// single submission
func runFrameRing(logger *slog.Logger, device *staging.Device, frames int) (err error) {
	ring, err := staging.NewFrameRing(device, frames, uniformPayload(128, 0), core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ring.Destroy())
	}()

	for frame := 0; frame < ring.Frames(); frame++ {
		err = ring.Update(frame, uniformPayload(128, byte(frame*16)))
		if err != nil {
			return err
		}
	}

	err = device.WithCommands(func(recorder staging.CommandRecorder) error {
		for frame := 0; frame < ring.Frames(); frame++ {
			err := ring.RecordTransfer(frame, recorder)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("frame ring flushed", slog.Int("Frames", ring.Frames()), slog.Int("Descriptors", len(ring.DescriptorViews())))
	return nil
}

func run(frames int, verbose, validation bool) (err error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(os.Stderr))

	app, err := createApplication(validation)
	if err != nil {
		return err
	}
	defer app.destroy()

	allocator, err := vulkan.NewAllocator(logger, app.physicalDevice, app.device, vulkan.AllocatorOptions{})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, allocator.Destroy())
	}()

	pool, err := vulkan.NewCommandPool(logger, app.device, allocator, vulkan.CommandPoolOptions{
		QueueFamilyIndex: app.transferFamily,
	})
	if err != nil {
		return err
	}
	defer pool.Destroy()

	device, err := staging.New(logger, allocator, pool, staging.CreateOptions{})
	if err != nil {
		return err
	}

	err = runUniformBuffer(logger, device, allocator)
	if err != nil {
		return err
	}

	err = runFrameRing(logger, device, frames)
	if err != nil {
		return err
	}

	fmt.Println(device.BuildStatsString(verbose))
	fmt.Println(allocator.BuildStatsString(verbose))

	return device.Validate()
}

func main() {
	frames := flag.Int("frames", staging.DefaultFramesInFlight, "number of frames in flight for the frame ring")
	verbose := flag.Bool("verbose", false, "log every buffer operation and print detailed statistics")
	validation := flag.Bool("validation", false, "enable VK_LAYER_KHRONOS_validation when installed and log its messages through ext_debug_utils")
	flag.Parse()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	err := run(*frames, *verbose, *validation)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
