package templates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/integrations/pdfdoc"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/placeholder"
	"github.com/BearBump/CarTrack/internal/tracklink"
	"github.com/BearBump/CarTrack/internal/validation"
)

type Repository interface {
	CreateTemplate(ctx context.Context, in models.TemplateCreateInput) (*models.Template, error)
	GetTemplate(ctx context.Context, id uint64) (*models.Template, error)
	ListTemplates(ctx context.Context, typ *models.TemplateType) ([]*models.Template, error)
	UpdateTemplate(ctx context.Context, id uint64, in models.TemplateUpdateInput) (*models.Template, error)
	SetDefaultTemplate(ctx context.Context, id uint64) (*models.Template, error)
	DefaultTemplate(ctx context.Context, typ models.TemplateType) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id uint64) error

	GetShipment(ctx context.Context, id uint64) (*models.Shipment, error)
}

// Rendered is a template after placeholder substitution.
type Rendered struct {
	TemplateID uint64              `json:"templateId"`
	Type       models.TemplateType `json:"type"`
	Subject    string              `json:"subject,omitempty"`
	Content    string              `json:"content"`
}

type Service struct {
	repo    Repository
	baseURL string
	now     func() time.Time
}

func New(repo Repository, baseURL string) *Service {
	return &Service{
		repo:    repo,
		baseURL: baseURL,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in models.TemplateCreateInput) (*models.Template, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("type must be one of CONTRACT, BILL, EMAIL")
	}
	return s.repo.CreateTemplate(ctx, in)
}

func (s *Service) Get(ctx context.Context, id uint64) (*models.Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

func (s *Service) List(ctx context.Context, typ *models.TemplateType) ([]*models.Template, error) {
	if typ != nil && !typ.Valid() {
		return nil, apperr.Validation("unknown template type %q", *typ)
	}
	return s.repo.ListTemplates(ctx, typ)
}

func (s *Service) Update(ctx context.Context, id uint64, in models.TemplateUpdateInput) (*models.Template, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		in.Name = &name
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, apperr.Validation("content must not be empty")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateTemplate(ctx, id, in)
}

// SetDefault делает шаблон единственным по умолчанию среди шаблонов его типа.
func (s *Service) SetDefault(ctx context.Context, id uint64) (*models.Template, error) {
	return s.repo.SetDefaultTemplate(ctx, id)
}

func (s *Service) DefaultFor(ctx context.Context, typ models.TemplateType) (*models.Template, error) {
	return s.repo.DefaultTemplate(ctx, typ)
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.repo.DeleteTemplate(ctx, id)
}

// Render подставляет данные отправки в шаблон.
func (s *Service) Render(ctx context.Context, templateID, shipmentID uint64) (*Rendered, error) {
	t, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	sh, err := s.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return s.render(t, sh), nil
}

func (s *Service) render(t *models.Template, sh *models.Shipment) *Rendered {
	v := placeholder.FromShipment(sh, tracklink.Build(s.baseURL, sh.TrackingToken), s.now())
	out := &Rendered{
		TemplateID: t.ID,
		Type:       t.Type,
		Content:    placeholder.Replace(t.Content, v),
	}
	if t.Subject != nil {
		out.Subject = placeholder.Replace(*t.Subject, v)
	}
	return out
}

// RenderPDF возвращает PDF и имя файла для Content-Disposition.
func (s *Service) RenderPDF(ctx context.Context, templateID, shipmentID uint64) ([]byte, string, error) {
	t, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, "", err
	}
	sh, err := s.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, "", err
	}
	r := s.render(t, sh)

	title := r.Subject
	if title == "" {
		title = t.Name
	}
	b, err := pdfdoc.Render(pdfdoc.Document{
		Title:     title,
		Body:      r.Content,
		QRContent: tracklink.Build(s.baseURL, sh.TrackingToken),
		Footer:    fmt.Sprintf("%s %s / %s", sh.Manufacturer, sh.Model, sh.VIN),
	})
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("%s-%d.pdf", strings.ToLower(string(t.Type)), sh.ID)
	return b, name, nil
}
