package installed

// AppState is the StateFlags bitmask from an appmanifest. Bit positions
// match the values Steam writes on disk.
type AppState uint32

const (
	StateInvalid        AppState = 0
	StateUninstalled    AppState = 1
	StateUpdateRequired AppState = 2
	StateFullyInstalled AppState = 4
	StateUpdateQueued   AppState = 8
	StateUpdateOptional AppState = 16
	StateFilesMissing   AppState = 32
	StateSharedOnly     AppState = 64
	StateFilesCorrupt   AppState = 128
	StateUpdateRunning  AppState = 256
	StateUpdatePaused   AppState = 512
	StateUpdateStarted  AppState = 1024
	StateUninstalling   AppState = 2048
	StateBackupRunning  AppState = 4096
	StateReconfiguring  AppState = 65536
	StateValidating     AppState = 131072
	StateAddingFiles    AppState = 262144
	StatePreallocating  AppState = 524288
	StateDownloading    AppState = 1048576
	StateStaging        AppState = 2097152
	StateCommitting     AppState = 4194304
	StateUpdateStopping AppState = 8388608
)

// HasAllOf reports whether every bit of flags is set.
func (s AppState) HasAllOf(flags AppState) bool {
	return s&flags == flags
}
