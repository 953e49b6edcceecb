package deps

import "nutriscan/internal/config"

// CaptureRequirements lists the external binaries the capture pipeline
// shells out to.
func CaptureRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.GrabberBinary(),
			Description: "Grabs full-resolution stills from the camera",
		},
		{
			Name:        "zbarcam",
			Command:     cfg.DecoderBinary(),
			Description: "Streams barcode reads from the live feed",
		},
		{
			Name:        "v4l2-ctl",
			Command:     cfg.ProbeBinary(),
			Description: "Probes the camera's native capture format",
			Optional:    true,
		},
	}
}
