package wizard

import "github.com/ziadkadry99/green-analyzer/internal/form"

var (
	regularSteps = []string{"Role", "Details", "Permitting", "Analysis", "Financing", "Summary", "Report"}
	salesSteps   = []string{"Role", "Technology", "Market", "Selling Points", "Outreach", "Playbook"}
)

// Flow returns the step labels for role.
func Flow(role form.Role) []string {
	if role == form.RoleSales {
		return append([]string(nil), salesSteps...)
	}
	return append([]string(nil), regularSteps...)
}

// pipeline identifies one independently dispatched orchestration.
type pipeline int

const (
	pipePermitting pipeline = iota
	pipeBulk
	pipeFinancing
	pipeSummary
	pipeFinalReport
	pipeSales
)

func (p pipeline) String() string {
	switch p {
	case pipePermitting:
		return "permitting"
	case pipeBulk:
		return "bulk"
	case pipeFinancing:
		return "financing"
	case pipeSummary:
		return "summary"
	case pipeFinalReport:
		return "final_report"
	case pipeSales:
		return "sales"
	}
	return "unknown"
}

// trigger returns the pipeline started by entering step, if any.
func trigger(role form.Role, step int) (pipeline, bool) {
	if role == form.RoleSales {
		return pipeSales, step == 3
	}
	switch step {
	case 3:
		return pipePermitting, true
	case 4:
		return pipeBulk, true
	case 5:
		return pipeFinancing, true
	case 6:
		return pipeSummary, true
	case 7:
		return pipeFinalReport, true
	}
	return 0, false
}
