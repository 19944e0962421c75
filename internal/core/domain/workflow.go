package domain

// Workflow carries the business constants of one ingestion workflow.
type Workflow struct {
	ProviderCode string
	CompanyCode  string
	UploadType   string
	DocumentType string
	WorkflowName string
	JobID        string
}

func DefaultWorkflow() Workflow {
	return Workflow{
		ProviderCode: "AON",
		CompanyCode:  "CIE",
		UploadType:   "PGU",
		DocumentType: "RWS_CIE2024",
		WorkflowName: "AON_COE_CIE",
		JobID:        "NA",
	}
}
