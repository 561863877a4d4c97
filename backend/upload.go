package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
)

// File is one part of a multi-file upload.
type File struct {
	Name    string
	Type    leads.DocumentType
	Content io.Reader
}

// Upload is a batch of files for one lead.
type Upload struct {
	AgentID string
	LeadID  string
	Files   []File
}

// UploadFiles sends the batch and returns the references the backend assigned.
func (c *Client) UploadFiles(ctx context.Context, upload Upload) ([]leads.Reference, error) {
	if upload.LeadID == "" || len(upload.Files) == 0 {
		return nil, fmt.Errorf("[backend UploadFiles] %w: lead and at least one file are required", apperrors.ErrInvalidRequest)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{"agentId": upload.AgentID, "leadId": upload.LeadID}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("[backend UploadFiles] %w", err)
		}
	}
	for _, f := range upload.Files {
		if err := mw.WriteField("documentTypes", string(f.Type)); err != nil {
			return nil, fmt.Errorf("[backend UploadFiles] %w", err)
		}
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("[backend UploadFiles] %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("[backend UploadFiles] read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("[backend UploadFiles] %w", err)
	}

	var uploaded []ResourceSummary
	err := c.do(ctx, request{
		op:          "UploadFiles",
		method:      http.MethodPost,
		url:         c.endpoint("files", "upload-multiple"),
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, decodeJSON("UploadFiles", &uploaded))
	if err != nil {
		return nil, err
	}

	refs := make([]leads.Reference, 0, len(uploaded))
	for i, u := range uploaded {
		docType, parseErr := leads.ParseDocumentType(u.DocumentType)
		if parseErr != nil && i < len(upload.Files) {
			docType = upload.Files[i].Type
		}
		ref := leads.Reference{LeadID: upload.LeadID, Type: docType}
		refs = append(refs, ref.Resolve(u.ResourceID()))
	}
	return refs, nil
}
