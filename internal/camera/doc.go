// Package camera drives the V4L2 capture hardware through external tooling:
// ffmpeg grabs full-resolution stills, zbarcam streams barcode reads, and
// v4l2-ctl probes the sensor's native format. A udev netlink monitor reports
// camera attach and detach events for watch mode.
package camera
