package models

import (
	"io"
	"time"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// DocumentType is a named category of identity or corporate document.
type DocumentType string

// Individual account categories.
const (
	DocumentPassport        DocumentType = "passport"
	DocumentNationalID      DocumentType = "national_id"
	DocumentResidencePermit DocumentType = "residence_permit"
)

// Legal entity categories.
const (
	DocumentExtract   DocumentType = "extract"
	DocumentArticles  DocumentType = "articles"
	DocumentStructure DocumentType = "structure"
	DocumentFunds     DocumentType = "funds"
	DocumentWealth    DocumentType = "wealth"
	DocumentUBOID     DocumentType = "ubo_id"
)

// DocumentTypesFor returns the categories offered to an account type, in
// display order.
func DocumentTypesFor(t AccountType) []DocumentType {
	if t == AccountLegal {
		return []DocumentType{
			DocumentExtract, DocumentArticles, DocumentStructure,
			DocumentFunds, DocumentWealth, DocumentUBOID,
		}
	}
	return []DocumentType{DocumentPassport, DocumentNationalID, DocumentResidencePermit}
}

// ParseDocumentType validates a document category from external input.
func ParseDocumentType(s string) (DocumentType, error) {
	d := DocumentType(s)
	for _, t := range append(DocumentTypesFor(AccountIndividual), DocumentTypesFor(AccountLegal)...) {
		if t == d {
			return d, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown document type: "+s)
}

// DocumentTypeConfig is the static upload policy of one category.
type DocumentTypeConfig struct {
	MaxFiles         int      `json:"max_files"`
	AllowedMimeTypes []string `json:"allowed_mime_types"`
	MaxSizeBytes     int64    `json:"max_size_bytes"`
}

// UploadStatus tracks a single file through the upload lifecycle.
type UploadStatus string

const (
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

// UploadErrorReason explains why a file ended in the error status.
type UploadErrorReason string

const (
	ReasonUnsupportedType UploadErrorReason = "unsupported_type"
	ReasonTooLarge        UploadErrorReason = "too_large"
	ReasonTooManyFiles    UploadErrorReason = "too_many_files"
	ReasonTransferFailure UploadErrorReason = "transfer_failure"
)

// DocumentUpload is one selected file under a document type. Entries are
// only ever removed by explicit user action.
type DocumentUpload struct {
	ID           id.UploadID       `json:"id"`
	DocumentType DocumentType      `json:"document_type"`
	FileName     string            `json:"file_name"`
	MimeType     string            `json:"mime_type"`
	Size         int64             `json:"size"`
	FileRef      string            `json:"file_ref,omitempty"`
	Hash         string            `json:"hash,omitempty"`
	Status       UploadStatus      `json:"status"`
	ErrorReason  UploadErrorReason `json:"error_reason,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// UploadFile is a file offered for upload. Content may be nil when the caller
// only wants policy checks.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}
