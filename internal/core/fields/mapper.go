package fields

import (
	"time"

	"github.com/kirillkom/pension-intake/internal/core/domain"
	"github.com/kirillkom/pension-intake/internal/core/normalize"
)

const uploadTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Mapper struct {
	aliases  AliasTable
	workflow domain.Workflow
	now      func() time.Time
}

func NewMapper(aliases AliasTable, workflow domain.Workflow, now func() time.Time) *Mapper {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if now == nil {
		now = time.Now
	}
	return &Mapper{aliases: aliases, workflow: workflow, now: now}
}

// Lookup returns the value of the first alias of target carrying a non-empty value.
func (m *Mapper) Lookup(parsed domain.ParsedFields, target Target) *string {
	for _, label := range m.aliases[target] {
		if value := parsed[label]; value != "" {
			return &value
		}
	}
	return nil
}

// Map builds the canonical record for a validated document. The archival artifact
// name stays empty until the record is published.
func (m *Mapper) Map(doc domain.ExtractedDocument) domain.CanonicalRecord {
	parsed := doc.Data
	return domain.CanonicalRecord{
		PensionID:       m.Lookup(parsed, TargetPensionID),
		FirstName:       m.Lookup(parsed, TargetFirstName),
		LastName:        m.Lookup(parsed, TargetLastName),
		PensionProvider: m.Lookup(parsed, TargetPensionProvider),
		CompanyName:     m.Lookup(parsed, TargetCompanyName),
		Addr1:           m.Lookup(parsed, TargetAddr1),
		Addr2:           m.Lookup(parsed, TargetAddr2),
		Addr3:           m.Lookup(parsed, TargetAddr3),
		Eircode:         m.Lookup(parsed, TargetEircode),
		PPSN:            m.Lookup(parsed, TargetPPSN),
		DateOfBirth:     normalize.Date(m.Lookup(parsed, TargetDateOfBirth)),
		Phone:           normalize.PhoneNumber(m.Lookup(parsed, TargetPhone)),
		Email:           m.Lookup(parsed, TargetEmail),

		UploadType:      m.workflow.UploadType,
		UploadTimestamp: m.now().UTC().Format(uploadTimestampLayout),
		DocumentType:    m.workflow.DocumentType,

		Source: doc.Source,
	}
}
