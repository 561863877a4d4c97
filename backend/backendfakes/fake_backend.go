// Package backendfakes provides an in-memory verification backend for tests.
package backendfakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/lead-dashboard/agents"
	"github.com/jrsteele09/lead-dashboard/backend"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
)

type account struct {
	identity agents.Identity
	password string
}

// FakeBackend serves canned data. Calls can be held open with Hold to
// simulate slow responses, and failures injected per operation with Fail.
type FakeBackend struct {
	mu        sync.Mutex
	accounts  map[string]account
	leads     map[string][]leads.Lead
	names     map[string]string
	insights  map[string][]leads.Insight
	documents map[string]string
	audio     map[string]string
	docTypes  map[string]string
	failures  map[string]error
	holds     map[string]chan struct{}
	calls     []string
	nextID    int
}

func defaultDocumentTypes() map[string]string {
	return map[string]string{
		"AADHAR":         "Aadhaar Card",
		"PAN":            "PAN Card",
		"REFERENCE_CALL": "Reference Call",
	}
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		accounts:  map[string]account{},
		leads:     map[string][]leads.Lead{},
		names:     map[string]string{},
		insights:  map[string][]leads.Insight{},
		documents: map[string]string{},
		audio:     map[string]string{},
		docTypes:  defaultDocumentTypes(),
		failures:  map[string]error{},
		holds:     map[string]chan struct{}{},
	}
}

func (f *FakeBackend) AddAgent(identity agents.Identity, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[identity.Email] = account{identity: identity, password: password}
}

func (f *FakeBackend) AddLead(agentID string, lead leads.Lead, insights ...leads.Insight) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead.AgentID = agentID
	f.leads[agentID] = append(f.leads[agentID], lead)
	f.names[lead.ID] = lead.Name
	f.insights[lead.ID] = insights
}

func (f *FakeBackend) AddDocument(leadID string, docType leads.DocumentType, documentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if docType.IsAudio() {
		f.audio[leadID] = documentID
		return
	}
	f.documents[documentKey(leadID, docType)] = documentID
}

// SetDocumentTypes replaces the value to label map served by DocumentTypes.
func (f *FakeBackend) SetDocumentTypes(labels map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docTypes = labels
}

// Fail makes every call to op return err until cleared with a nil err.
func (f *FakeBackend) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Hold blocks calls to op for key until the returned release func is called.
// Held calls ignore cancellation so they resolve late, as a slow network would.
func (f *FakeBackend) Hold(op, key string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.holds[op+":"+key] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.holds, op+":"+key)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeBackend) enter(op, key string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op+":"+key)
	hold := f.holds[op+":"+key]
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[op]
}

func documentKey(leadID string, docType leads.DocumentType) string {
	return leadID + "/" + string(docType)
}

func (f *FakeBackend) Login(_ context.Context, creds agents.Credentials) (agents.Identity, error) {
	if err := f.enter("Login", creds.Email); err != nil {
		return agents.Identity{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[creds.Email]
	if !ok || acct.password != creds.Password {
		return agents.Identity{}, fmt.Errorf("%w: Invalid email or password", apperrors.ErrInvalidCredentials)
	}
	return acct.identity, nil
}

func (f *FakeBackend) Register(_ context.Context, reg agents.Registration) error {
	if err := f.enter("Register", reg.Email); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[reg.Email]; exists {
		return fmt.Errorf("%w: email already registered", apperrors.ErrInvalidRequest)
	}
	f.nextID++
	f.accounts[reg.Email] = account{
		identity: agents.Identity{ID: fmt.Sprintf("agent-%d", f.nextID), Name: reg.Name, Email: reg.Email},
		password: reg.Password,
	}
	return nil
}

func (f *FakeBackend) ListLeads(_ context.Context, agentID string) ([]leads.Lead, error) {
	if err := f.enter("ListLeads", agentID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]leads.Lead{}, f.leads[agentID]...), nil
}

func (f *FakeBackend) CreateLead(_ context.Context, lead leads.NewLead) (leads.Lead, error) {
	if err := f.enter("CreateLead", lead.AgentID); err != nil {
		return leads.Lead{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := leads.Lead{ID: fmt.Sprintf("lead-%d", f.nextID), AgentID: lead.AgentID, Name: lead.Name, Email: lead.Email}
	f.leads[lead.AgentID] = append(f.leads[lead.AgentID], created)
	f.names[created.ID] = created.Name
	return created, nil
}

func (f *FakeBackend) UploadFiles(_ context.Context, upload backend.Upload) ([]leads.Reference, error) {
	if err := f.enter("UploadFiles", upload.LeadID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	refs := make([]leads.Reference, 0, len(upload.Files))
	for _, file := range upload.Files {
		f.nextID++
		id := fmt.Sprintf("doc-%d", f.nextID)
		if file.Type.IsAudio() {
			f.audio[upload.LeadID] = id
		} else {
			f.documents[documentKey(upload.LeadID, file.Type)] = id
		}
		refs = append(refs, leads.Reference{LeadID: upload.LeadID, Type: file.Type, ResourceID: id})
	}
	return refs, nil
}

func (f *FakeBackend) LeadName(_ context.Context, leadID string) (string, error) {
	if err := f.enter("LeadName", leadID); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.names[leadID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return name, nil
}

func (f *FakeBackend) LeadInsights(_ context.Context, leadID string) ([]leads.Insight, error) {
	if err := f.enter("LeadInsights", leadID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.names[leadID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	return append([]leads.Insight{}, f.insights[leadID]...), nil
}

func (f *FakeBackend) RecentDocument(_ context.Context, leadID string, docType leads.DocumentType) (backend.ResourceSummary, error) {
	if err := f.enter("RecentDocument", leadID); err != nil {
		return backend.ResourceSummary{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.documents[documentKey(leadID, docType)]
	if !ok {
		return backend.ResourceSummary{}, apperrors.ErrNotFound
	}
	return backend.ResourceSummary{DocumentID: id, DocumentType: string(docType), LeadID: leadID}, nil
}

func (f *FakeBackend) RecentAudio(_ context.Context, leadID string) (backend.ResourceSummary, error) {
	if err := f.enter("RecentAudio", leadID); err != nil {
		return backend.ResourceSummary{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.audio[leadID]
	if !ok {
		return backend.ResourceSummary{}, apperrors.ErrNotFound
	}
	return backend.ResourceSummary{AudioID: id, LeadID: leadID}, nil
}

func (f *FakeBackend) DocumentReport(_ context.Context, leadID string, docType leads.DocumentType) (backend.Report, error) {
	if err := f.enter("DocumentReport", leadID); err != nil {
		return backend.Report{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.documents[documentKey(leadID, docType)]
	if !ok {
		return backend.Report{}, apperrors.ErrNotFound
	}
	raw := fmt.Sprintf(`{"documentId":%q,"leadId":%q}`, id, leadID)
	return backend.Report{DocumentID: id, Raw: []byte(raw)}, nil
}

func (f *FakeBackend) AudioReport(_ context.Context, audioID string) (backend.Report, error) {
	if err := f.enter("AudioReport", audioID); err != nil {
		return backend.Report{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.audio {
		if id == audioID {
			return backend.Report{DocumentID: id, Raw: []byte(fmt.Sprintf(`{"audioId":%q}`, id))}, nil
		}
	}
	return backend.Report{}, apperrors.ErrNotFound
}

func (f *FakeBackend) DocumentImage(_ context.Context, documentID string) (backend.Image, error) {
	if err := f.enter("DocumentImage", documentID); err != nil {
		return backend.Image{}, err
	}
	return backend.Image{ContentType: "image/png", Data: []byte(documentID)}, nil
}

func (f *FakeBackend) LeadOptions(_ context.Context, agentID string) ([]leads.LeadOption, error) {
	if err := f.enter("LeadOptions", agentID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	options := make([]leads.LeadOption, 0, len(f.leads[agentID]))
	for _, lead := range f.leads[agentID] {
		options = append(options, leads.LeadOption{ID: lead.ID, Name: lead.Name, Email: lead.Email})
	}
	return options, nil
}

func (f *FakeBackend) DocumentTypes(_ context.Context) ([]leads.DocumentTypeOption, error) {
	if err := f.enter("DocumentTypes", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return leads.DocumentTypeOptions(f.docTypes), nil
}
