// pkg/registry/schema.go
package registry

// ActivityRegistry is the catalog of service tasks the workers implement,
// as referenced by the BPMN processes.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	TaskType    string   `json:"taskType"`
	ErrorCodes  []string `json:"errorCodes"`
	Timeout     string   `json:"timeout"`
	Retries     int      `json:"retries"`
	Workflows   []string `json:"workflows"`
}

// Activity categories
const (
	CategorySubmission   = "submission"
	CategoryAnalysis     = "analysis"
	CategoryDiscovery    = "discovery"
	CategoryEngagement   = "engagement"
	CategoryNotification = "notification"
)
