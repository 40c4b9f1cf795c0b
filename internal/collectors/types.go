package collectors

// Hardware is the CPU, memory and GPU fragment of a report.
type Hardware struct {
	CPUModel     string  `json:"cpu_model" yaml:"cpu_model"`
	CPUCores     int     `json:"cpu_cores" yaml:"cpu_cores"`
	CPUThreads   int     `json:"cpu_threads" yaml:"cpu_threads"`
	CPUFrequency *string `json:"cpu_frequency" yaml:"cpu_frequency"`
	MemoryTotal  string  `json:"memory_total" yaml:"memory_total"`
	MemoryUsed   string  `json:"memory_used" yaml:"memory_used"`
	MemoryType   *string `json:"memory_type" yaml:"memory_type"`
	GPUModel     *string `json:"gpu_model" yaml:"gpu_model"`
	GPUMemory    *string `json:"gpu_memory" yaml:"gpu_memory"` // reserved, always null
}

// StorageVolume is one mounted partition with readable usage.
type StorageVolume struct {
	Device     string `json:"device" yaml:"device"`
	Type       string `json:"type" yaml:"type"`
	Size       string `json:"size" yaml:"size"`
	Used       string `json:"used" yaml:"used"`
	MountPoint string `json:"mount_point" yaml:"mount_point"`
}

// NetworkInterface is one non-loopback interface carrying an IPv4 address.
type NetworkInterface struct {
	Name       string  `json:"interface_name" yaml:"interface_name"`
	IPAddress  string  `json:"ip_address" yaml:"ip_address"`
	MACAddress *string `json:"mac_address" yaml:"mac_address"`
	Status     string  `json:"status" yaml:"status"`
	Speed      *string `json:"speed" yaml:"speed"`
}

// Service states reported to the dashboard.
const (
	ServiceActive   = "active"
	ServiceInactive = "inactive"
	ServiceFailed   = "failed"
	ServiceUnknown  = "unknown"
)

// Link states.
const (
	LinkUp   = "up"
	LinkDown = "down"
)

// ServiceStatus is the state of one watched service.
type ServiceStatus struct {
	Name        string  `json:"service_name" yaml:"service_name"`
	Status      string  `json:"status" yaml:"status"`
	Description *string `json:"description" yaml:"description"`
}

// ApplicationCategory is the fixed category attached to every application.
const ApplicationCategory = "Application"

// ApplicationInfo is one installed watched package.
type ApplicationInfo struct {
	Name            string  `json:"app_name" yaml:"app_name"`
	CurrentVersion  string  `json:"current_version" yaml:"current_version"`
	LatestVersion   *string `json:"latest_version" yaml:"latest_version"` // reserved, always null
	UpdateAvailable bool    `json:"update_available" yaml:"update_available"`
	Category        string  `json:"category" yaml:"category"`
	Size            *string `json:"size" yaml:"size"` // reserved, always null
}

// AppWatch maps a package identifier to the name shown on the dashboard.
type AppWatch struct {
	Package string `mapstructure:"package" json:"package" yaml:"package"`
	Name    string `mapstructure:"name" json:"name" yaml:"name"`
}

// optional returns nil for an empty string so it serializes as null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const gib = 1024 * 1024 * 1024

// formatGB renders a byte count as gibibytes with two decimals.
func formatGB(bytes uint64) string {
	return formatFloat(float64(bytes)/gib) + " GB"
}
