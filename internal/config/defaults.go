package config

const (
	defaultDataDir           = "~/.local/share/nutriscan"
	defaultLogDir            = "~/.local/share/nutriscan/logs"
	defaultPersona           = "witty"
	defaultRequestTimeout    = 300
	defaultCameraDevice      = "/dev/video0"
	defaultWidthHint         = 2560
	defaultHeightHint        = 1440
	defaultStillQuality      = 95
	defaultSnapshotTimeout   = 10
	defaultGeoProviderURL    = "http://ip-api.com/json"
	defaultGeoTimeout        = 5
	defaultFallbackLatitude  = 28.61
	defaultFallbackLongitude = 77.20
	defaultPurgeDays         = 30
	defaultReconcilePath     = "~/.local/share/nutriscan/reconcile.json"
	defaultDecodeCooldown    = 3
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Backend: Backend{
			Persona:        defaultPersona,
			RequestTimeout: defaultRequestTimeout,
		},
		Camera: Camera{
			Device:          defaultCameraDevice,
			WidthHint:       defaultWidthHint,
			HeightHint:      defaultHeightHint,
			StillQuality:    defaultStillQuality,
			SnapshotTimeout: defaultSnapshotTimeout,
		},
		Geolocation: Geolocation{
			Enabled:           true,
			ProviderURL:       defaultGeoProviderURL,
			TimeoutSeconds:    defaultGeoTimeout,
			FallbackLatitude:  defaultFallbackLatitude,
			FallbackLongitude: defaultFallbackLongitude,
		},
		ImageStore: ImageStore{
			PurgeDays: defaultPurgeDays,
		},
		Reconcile: Reconcile{
			Path: defaultReconcilePath,
		},
		Watch: Watch{
			DecodeCooldownSeconds: defaultDecodeCooldown,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
