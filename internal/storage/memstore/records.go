package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
)

// ---- leads ----

func (s *Store) CreateLead(ctx context.Context, in models.LeadCreateInput) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.TrimSpace(in.Email)
	for _, other := range s.leads {
		if strings.EqualFold(other.Email, email) {
			return nil, apperr.Conflict("a request from %s has already been received", in.Email)
		}
	}
	l := &models.Lead{
		ID:             s.nextID(),
		Name:           in.Name,
		Email:          email,
		Phone:          in.Phone,
		DocumentStatus: in.DocumentStatus,
		Message:        emptyToNil(in.Message),
		CreatedAt:      s.now(),
	}
	s.leads[l.ID] = l
	c := *l
	return &c, nil
}

func (s *Store) ListLeads(ctx context.Context, contacted *bool) ([]*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if contacted != nil && l.Contacted != *contacted {
			continue
		}
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) SetLeadContacted(ctx context.Context, id uint64, contacted bool) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead %d not found", id)
	}
	l.Contacted = contacted
	c := *l
	return &c, nil
}

func (s *Store) DeleteLead(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[id]; !ok {
		return apperr.NotFound("lead %d not found", id)
	}
	delete(s.leads, id)
	return nil
}

func (s *Store) DeleteLeads(ctx context.Context, ids []uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := s.leads[id]; ok {
			delete(s.leads, id)
			n++
		}
	}
	return n, nil
}

// ---- templates ----

func (s *Store) clearDefault(typ models.TemplateType, keepID uint64) {
	for _, t := range s.templates {
		if t.Type == typ && t.ID != keepID {
			t.IsDefault = false
		}
	}
}

func (s *Store) CreateTemplate(ctx context.Context, in models.TemplateCreateInput) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	t := &models.Template{
		ID:        s.nextID(),
		Name:      in.Name,
		Type:      in.Type,
		Subject:   emptyToNil(in.Subject),
		Content:   in.Content,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if t.IsDefault {
		s.clearDefault(t.Type, t.ID)
	}
	s.templates[t.ID] = t
	c := *t
	return &c, nil
}

func (s *Store) GetTemplate(ctx context.Context, id uint64) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, apperr.NotFound("template %d not found", id)
	}
	c := *t
	return &c, nil
}

func (s *Store) ListTemplates(ctx context.Context, typ *models.TemplateType) ([]*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if typ != nil && t.Type != *typ {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, id uint64, in models.TemplateUpdateInput) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, apperr.NotFound("template %d not found", id)
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Subject != nil {
		t.Subject = emptyToNil(in.Subject)
	}
	if in.Content != nil {
		t.Content = *in.Content
	}
	if in.IsDefault != nil {
		t.IsDefault = *in.IsDefault
	}
	if t.IsDefault {
		s.clearDefault(t.Type, t.ID)
	}
	t.UpdatedAt = s.now()
	c := *t
	return &c, nil
}

func (s *Store) SetDefaultTemplate(ctx context.Context, id uint64) (*models.Template, error) {
	isDefault := true
	return s.UpdateTemplate(ctx, id, models.TemplateUpdateInput{IsDefault: &isDefault})
}

func (s *Store) DefaultTemplate(ctx context.Context, typ models.TemplateType) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.Type == typ && t.IsDefault {
			c := *t
			return &c, nil
		}
	}
	return nil, apperr.NotFound("no default %s template", typ)
}

func (s *Store) DeleteTemplate(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return apperr.NotFound("template %d not found", id)
	}
	delete(s.templates, id)
	return nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.TrimSpace(u.Email)
	for _, other := range s.users {
		if strings.EqualFold(other.Email, email) {
			return nil, apperr.Conflict("user %s already exists", u.Email)
		}
	}
	u.ID = s.nextID()
	u.Email = email
	u.CreatedAt = s.now()
	s.users[u.ID] = &u
	c := u
	return &c, nil
}

func (s *Store) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user %d not found", id)
	}
	c := *u
	return &c, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperr.NotFound("user %d not found", id)
	}
	delete(s.users, id)
	return nil
}

// ---- showcase ----

func (s *Store) CreateShowcaseItem(ctx context.Context, in models.ShowcaseCreateInput) (*models.ShowcaseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := -1
	for _, it := range s.showcase {
		if it.Order > order {
			order = it.Order
		}
	}
	it := &models.ShowcaseItem{
		ID:          s.nextID(),
		Title:       in.Title,
		Description: emptyToNil(in.Description),
		ImageURL:    in.ImageURL,
		Order:       order + 1,
		Visible:     in.Visible,
		CreatedAt:   s.now(),
	}
	s.showcase[it.ID] = it
	c := *it
	return &c, nil
}

func (s *Store) UpdateShowcaseItem(ctx context.Context, id uint64, in models.ShowcaseUpdateInput) (*models.ShowcaseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.showcase[id]
	if !ok {
		return nil, apperr.NotFound("showcase item %d not found", id)
	}
	if in.Title != nil {
		it.Title = *in.Title
	}
	if in.Description != nil {
		it.Description = emptyToNil(in.Description)
	}
	if in.ImageURL != nil {
		it.ImageURL = *in.ImageURL
	}
	if in.Visible != nil {
		it.Visible = *in.Visible
	}
	c := *it
	return &c, nil
}

func (s *Store) DeleteShowcaseItem(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.showcase[id]; !ok {
		return apperr.NotFound("showcase item %d not found", id)
	}
	delete(s.showcase, id)
	return nil
}

func (s *Store) ListShowcaseItems(ctx context.Context, visibleOnly bool) ([]*models.ShowcaseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ShowcaseItem, 0, len(s.showcase))
	for _, it := range s.showcase {
		if visibleOnly && !it.Visible {
			continue
		}
		c := *it
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ReorderShowcaseItems(ctx context.Context, ids []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.showcase[id]; !ok {
			return apperr.NotFound("showcase item %d not found", id)
		}
	}
	for i, id := range ids {
		s.showcase[id].Order = i
	}
	return nil
}
