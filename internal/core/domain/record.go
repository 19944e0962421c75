package domain

import (
	"path/filepath"
	"strings"
)

// InputImage is one scanned page waiting in the input directory.
type InputImage struct {
	Name string `json:"name"`
	Path string `json:"-"`
}

// ParsedFields maps trimmed recognizer labels to trimmed values.
type ParsedFields map[string]string

// ExtractedDocument is the snapshot unit: the source file plus its parsed fields.
// RawText is empty when extraction failed.
type ExtractedDocument struct {
	Source  InputImage   `json:"-"`
	File    string       `json:"file"`
	RawText string       `json:"-"`
	Data    ParsedFields `json:"data"`
}

// CanonicalRecord is the persisted pensioner row. Nil pointers are stored as NULL.
type CanonicalRecord struct {
	PensionID       *string `json:"pensionID"`
	FirstName       *string `json:"fName"`
	LastName        *string `json:"lName"`
	PensionProvider *string `json:"pensionProvider"`
	CompanyName     *string `json:"companyName"`
	Addr1           *string `json:"addr1"`
	Addr2           *string `json:"addr2"`
	Addr3           *string `json:"addr3"`
	City            *string `json:"city"`
	County          *string `json:"county"`
	Eircode         *string `json:"eircode"`
	PPSN            *string `json:"ppsn"`
	DateOfBirth     *string `json:"dob"`
	Phone           *string `json:"phone"`
	Email           *string `json:"emailId"`

	ArchivalArtifactName string `json:"pdfName"`
	UploadType           string `json:"uploadType"`
	UploadTimestamp      string `json:"uploadDate"`
	DocumentType         string `json:"docType"`

	Source InputImage `json:"-"`
}

// QuarantineKey is the file name relocated when the record fails after mapping.
// Once the artifact name is assigned it wins over the source file name, even though
// no file by that name exists in the input directory.
func (r *CanonicalRecord) QuarantineKey() string {
	if r.ArchivalArtifactName != "" {
		return r.ArchivalArtifactName
	}
	return r.Source.Name
}

// ArchivalArtifact describes one published document.
type ArchivalArtifact struct {
	Name         string            `json:"name"`
	Key          string            `json:"key"`
	OwnerCompany string            `json:"owner_company"`
	Metadata     map[string]string `json:"metadata"`
}

// Artifact metadata keys attached to every published object.
const (
	MetaDocumentType      = "doctype"
	MetaFirstName         = "fName"
	MetaLastName          = "lName"
	MetaAccountNumber     = "accountNumber"
	MetaWorkflowName      = "workflowName"
	MetaJobID             = "jobID"
	MetaDocumentID        = "documentID"
	MetaUploadedTimestamp = "uploadedDateTime"
)

// HasExtension reports whether name carries ext, compared case-insensitively.
func HasExtension(name, ext string) bool {
	if ext == "" {
		return true
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
