package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kirillkom/pension-intake/internal/core/domain"
	"github.com/kirillkom/pension-intake/internal/core/ports"
)

const missingValue = "NA"

type ArchivePublishUseCase struct {
	renderer ports.DocumentRenderer
	objects  ports.ObjectPublisher
	workflow domain.Workflow
	newID    func() string
}

func NewArchivePublishUseCase(
	renderer ports.DocumentRenderer,
	objects ports.ObjectPublisher,
	workflow domain.Workflow,
	newID func() string,
) *ArchivePublishUseCase {
	if newID == nil {
		newID = uuid.NewString
	}
	return &ArchivePublishUseCase{
		renderer: renderer,
		objects:  objects,
		workflow: workflow,
		newID:    newID,
	}
}

// Publish names the artifact, renders the source image and stores it under the
// company namespace. The record's artifact name is assigned before rendering and
// is never reassigned.
func (uc *ArchivePublishUseCase) Publish(ctx context.Context, rec *domain.CanonicalRecord) (*domain.ArchivalArtifact, error) {
	if rec.ArchivalArtifactName != "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "publish artifact",
			fmt.Errorf("record already published as %s", rec.ArchivalArtifactName))
	}

	artifactID := uc.newID()
	rec.ArchivalArtifactName = fmt.Sprintf("%s_%s_%s.pdf",
		valueOrMissing(rec.PensionProvider), valueOrMissing(rec.PensionID), artifactID)

	company := valueOrMissing(rec.CompanyName)
	artifact := &domain.ArchivalArtifact{
		Name:         rec.ArchivalArtifactName,
		Key:          company + "/" + rec.ArchivalArtifactName,
		OwnerCompany: company,
		Metadata:     uc.metadata(rec, artifactID),
	}

	rendered, err := uc.renderer.RenderSinglePage(ctx, rec.Source.Path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrArchival, "render document", err)
	}
	if len(rendered) == 0 {
		return nil, domain.WrapError(domain.ErrArchival, "render document", errors.New("renderer produced no bytes"))
	}

	if err := uc.objects.Publish(ctx, artifact.Key, bytes.NewReader(rendered), artifact.Metadata); err != nil {
		return nil, domain.WrapError(domain.ErrArchival, "publish artifact", err)
	}
	return artifact, nil
}

func (uc *ArchivePublishUseCase) metadata(rec *domain.CanonicalRecord, artifactID string) map[string]string {
	meta := map[string]string{
		domain.MetaDocumentType:      uc.workflow.DocumentType,
		domain.MetaAccountNumber:     valueOrMissing(rec.PensionID) + "_" + valueOrMissing(rec.PPSN),
		domain.MetaWorkflowName:      uc.workflow.WorkflowName,
		domain.MetaJobID:             uc.workflow.JobID,
		domain.MetaDocumentID:        artifactID,
		domain.MetaUploadedTimestamp: rec.UploadTimestamp,
	}
	if rec.FirstName != nil {
		meta[domain.MetaFirstName] = *rec.FirstName
	}
	if rec.LastName != nil {
		meta[domain.MetaLastName] = *rec.LastName
	}
	return meta
}

func valueOrMissing(p *string) string {
	if p == nil || *p == "" {
		return missingValue
	}
	return *p
}
