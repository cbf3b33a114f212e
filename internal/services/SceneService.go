package services

import (
	"citystate/internal/access"
	"citystate/internal/models"
	"citystate/internal/providers"
	"citystate/internal/storage"
	"fmt"
	"strings"
	"sync"
	"time"
)

type SceneServiceInterface interface {
	Scene() *models.Scene
	Placement(id string) (*models.Placement, bool)
	Placements() []*models.Placement
	Flags() models.Flags
	Revision() uint64
	SetFlag(actor access.Viewer, name string, value bool) (models.Flags, error)
	UpsertPlacement(actor access.Viewer, p models.Placement) (*models.Placement, error)
	RentPlacement(actor access.Viewer, id string, brand models.Brand) (*models.Placement, error)
	SetCreative(actor access.Viewer, id, dataURI string) error
}

// SceneService owns the editor state: the scene layout and the flags. Both
// are written together so a save never persists one without the other.
type SceneService struct {
	mu       sync.Mutex
	store    *storage.Store
	audit    AuditServiceInterface
	logger   providers.Logger
	revision uint64
	clock    func() time.Time
}

func NewSceneService(store *storage.Store, audit AuditServiceInterface, logger providers.Logger) SceneServiceInterface {
	return &SceneService{store: store, audit: audit, logger: logger, clock: time.Now}
}

func (s *SceneService) Scene() *models.Scene {
	scene := storage.Load(s.store, storage.KeyScene, models.NewScene())
	if scene == nil {
		return models.NewScene()
	}
	if scene.Placements == nil {
		scene.Placements = make(map[string]*models.Placement)
	}
	for id, p := range scene.Placements {
		if p == nil {
			delete(scene.Placements, id)
		}
	}
	return scene
}

func (s *SceneService) Placement(id string) (*models.Placement, bool) {
	p, ok := s.Scene().Placements[id]
	return p, ok
}

// Placements lists the scene in placement ID order.
func (s *SceneService) Placements() []*models.Placement {
	scene := s.Scene()
	out := make([]*models.Placement, 0, len(scene.Placements))
	for _, id := range scene.IDs() {
		out = append(out, scene.Placements[id])
	}
	return out
}

func (s *SceneService) Flags() models.Flags {
	return loadFlags(s.store)
}

// Revision changes whenever the scene or flags are saved.
func (s *SceneService) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// save persists flags and scene as one write. Callers hold s.mu.
func (s *SceneService) save(flags models.Flags, scene *models.Scene) {
	s.store.SaveAll(map[string]any{
		storage.KeyFlags: flags,
		storage.KeyScene: scene,
	})
	s.revision++
}

func (s *SceneService) SetFlag(actor access.Viewer, name string, value bool) (models.Flags, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: flag name is required", ErrInvalidInput)
	}
	s.mu.Lock()
	flags := s.Flags()
	flags[name] = value
	s.save(flags, s.Scene())
	s.mu.Unlock()

	s.audit.Append(actor.Email, "flag_set", map[string]any{"flag": name, "value": value})
	return flags.Clone(), nil
}

func (s *SceneService) UpsertPlacement(actor access.Viewer, p models.Placement) (*models.Placement, error) {
	if !access.Resolve(actor, s.Flags()).EditScene {
		return nil, ErrForbidden
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return nil, fmt.Errorf("%w: placement id is required", ErrInvalidInput)
	}
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown placement kind %q", ErrInvalidInput, p.Kind)
	}

	s.mu.Lock()
	scene := s.Scene()
	if existing, ok := scene.Placements[p.ID]; ok {
		if p.Brand == nil {
			p.Brand = existing.Brand
		}
		if p.Creative == "" {
			p.Creative = existing.Creative
		}
	}
	scene.Placements[p.ID] = &p
	s.save(s.Flags(), scene)
	s.mu.Unlock()

	s.audit.Append(actor.Email, "placement_upsert", map[string]any{"id": p.ID, "kind": string(p.Kind)})
	return &p, nil
}

// RentPlacement attaches a brand. Organization accounts always rent for
// their own organization and cannot take over an active rental of another.
func (s *SceneService) RentPlacement(actor access.Viewer, id string, brand models.Brand) (*models.Placement, error) {
	if !access.Resolve(actor, s.Flags()).BrandPanel {
		return nil, ErrForbidden
	}
	if !actor.IsAdmin() {
		if actor.OrgID() == "" {
			return nil, ErrForbidden
		}
		brand.OrgID = actor.OrgID()
		if brand.OrgName == "" {
			brand.OrgName = actor.OrgContext.OrgName
		}
	}
	if brand.OrgID == "" {
		return nil, fmt.Errorf("%w: brand orgId is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	scene := s.Scene()
	p, ok := scene.Placements[id]
	if !ok {
		return nil, fmt.Errorf("placement %s: %w", id, ErrNotFound)
	}
	if !actor.IsAdmin() && p.Brand != nil && p.Brand.OrgID != brand.OrgID && p.Brand.Active(s.clock()) {
		return nil, ErrPlacementTaken
	}
	p.Brand = &brand
	s.save(s.Flags(), scene)
	s.audit.Append(actor.Email, "placement_rent", map[string]any{"id": id, "orgId": brand.OrgID})
	return p, nil
}

// SetCreative stores an uploaded creative on a placement. Editors may set
// any creative; organizations only on placements they rent.
func (s *SceneService) SetCreative(actor access.Viewer, id, dataURI string) error {
	flags := s.Flags()

	s.mu.Lock()
	defer s.mu.Unlock()
	scene := s.Scene()
	p, ok := scene.Placements[id]
	if !ok {
		return fmt.Errorf("placement %s: %w", id, ErrNotFound)
	}
	owner := p.Brand != nil && actor.OrgID() != "" && p.Brand.OrgID == actor.OrgID()
	if !access.Resolve(actor, flags).EditScene && !owner {
		return ErrForbidden
	}

	if flags.Enabled(models.FlagEnableCreativeChecker) {
		if err := CheckCreative(p.Kind, dataURI); err != nil {
			s.logger.Infof(providers.TypeAccess, "Creative for %s rejected: %s", id, err)
			return err
		}
	} else if _, _, err := ParseDataURI(dataURI); err != nil {
		return err
	}

	p.Creative = dataURI
	s.save(flags, scene)
	s.audit.Append(actor.Email, "creative_set", map[string]any{"id": id, "bytes": len(dataURI)})
	return nil
}
