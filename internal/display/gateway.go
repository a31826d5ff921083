package display

// QueryScope selects which paths a topology query returns.
type QueryScope uint32

const (
	AllPaths        QueryScope = 0x00000001
	OnlyActivePaths QueryScope = 0x00000002
)

func (s QueryScope) String() string {
	if s == OnlyActivePaths {
		return "active"
	}
	return "all"
}

type CommitFlags uint32

const (
	CommitUseSuppliedConfig CommitFlags = 0x00000020
	CommitValidate          CommitFlags = 0x00000040
	CommitApply             CommitFlags = 0x00000080
	CommitNoOptimization    CommitFlags = 0x00000100
	CommitSaveToDatabase    CommitFlags = 0x00000200
	CommitAllowChanges      CommitFlags = 0x00000400

	applyTopologyFlags    = CommitApply | CommitUseSuppliedConfig | CommitAllowChanges | CommitSaveToDatabase
	validateTopologyFlags = CommitValidate | CommitUseSuppliedConfig | CommitAllowChanges
)

type ModeChangeFlags uint32

const (
	ModeUpdateRegistry ModeChangeFlags = 0x00000001
	ModeTest           ModeChangeFlags = 0x00000002
)

// TopologyGateway wraps the two-phase topology query and the full commit.
// QueryConfig returns the complete path and mode arrays or an error; it never
// returns partially filled buffers.
type TopologyGateway interface {
	QueryConfig(scope QueryScope) ([]Path, []Mode, error)
	CommitConfig(paths []Path, modes []Mode, flags CommitFlags) error
}

// DeviceInfoGateway wraps the typed device-info requests keyed by adapter and
// source or target id.
type DeviceInfoGateway interface {
	SourceName(adapter AdapterID, sourceID uint32) (string, error)
	TargetName(adapter AdapterID, targetID uint32) (TargetName, error)
	MonitorUniqueName(adapter AdapterID, targetID uint32) (string, error)
	DPIScale(adapter AdapterID, sourceID uint32) (ScaleRange, error)
	SetDPIScale(adapter AdapterID, sourceID uint32, relative int32) error
}

// ModeGateway wraps the legacy device-name scoped mode API.
type ModeGateway interface {
	Devices() ([]Device, error)
	Monitors() ([]Monitor, error)
	CurrentMode(deviceName string) (DeviceMode, error)
	Modes(deviceName string) ([]DeviceMode, error)
	// ChangeMode reads the device's current mode, overwrites the fields
	// selected by fields and commits it.
	ChangeMode(deviceName string, mode DeviceMode, fields ModeFields, flags ModeChangeFlags) (ChangeStatus, error)
}

// Gateway is the whole OS display configuration surface.
type Gateway interface {
	TopologyGateway
	DeviceInfoGateway
	ModeGateway
}
