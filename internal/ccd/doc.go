// Package ccd binds the Windows display configuration APIs: the CCD topology
// calls, the DPI device-info requests, the legacy per-device mode API and
// monitor enumeration. On other platforms the package is empty.
package ccd
