package solidworks

import "fmt"

// Vendor-defined option codes. These are opaque integers mandated by the
// automation interface's calling convention and pass through unchanged.
const (
	docTypeCodePart     = 1
	docTypeCodeAssembly = 2
	docTypeCodeDrawing  = 3

	// OpenDoc6 silent-mode option and the seeds for its by-reference
	// error/warning slots.
	openOptionSilent = 1
	openErrorSeed    = 2
	openWarningSeed  = 128

	// Save3 silent-mode option and slot seeds.
	saveOptionSilent = 1
	saveErrorSeed    = 1
	saveWarningSeed  = 1

	// User preference toggles.
	toggleShowFreezeBar = 461
	toggleHideAllTypes  = 198

	// ShowNamedView2 view id for the isometric orientation.
	isometricViewCode = 7

	// EditFreeze position code for "after the named feature".
	freezeBarAfterFeature = 3
)

// processName is the executable name used by the forceful disconnect
// fallback. Killing by name takes down every instance on the machine, not
// just the one this session owns.
const processName = "SLDWORKS.exe"

// defaultScene is the background scene asset applied while staging.
const defaultScene = `\scenes\01 basic scenes\11 white kitchen.p2s`

// DefaultExportFolder is the folder created under the user's desktop when no
// export destination is configured.
const DefaultExportFolder = "SolidWrap Exports"

// progID computes the automation class name for a release year. The vendor
// derives its interface version by subtracting 1992 from the release year.
func progID(version int) string {
	return fmt.Sprintf("SldWorks.Application.%d", version-1992)
}
