package fields

import "github.com/kirillkom/pension-intake/internal/core/domain"

const (
	LabelProvider = "Provider"
	LabelCompany  = "Company"
)

// Validator gates parsed documents on the provider and company codes of the workflow.
type Validator struct {
	providerCode string
	companyCode  string
}

func NewValidator(workflow domain.Workflow) *Validator {
	return &Validator{
		providerCode: workflow.ProviderCode,
		companyCode:  workflow.CompanyCode,
	}
}

func (v *Validator) IsValid(parsed domain.ParsedFields) bool {
	provider, ok := parsed[LabelProvider]
	if !ok || provider != v.providerCode {
		return false
	}
	company, ok := parsed[LabelCompany]
	return ok && company == v.companyCode
}
