package access

import (
	"context"
	"strings"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/authz"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/clock"
)

// BusinessService alta de negocios, roles, fotocopiadoras y lista de precios.
type BusinessService struct {
	access          *Service
	businessRepo    repository.BusinessRepository
	roleRepo        repository.UserBusinessRoleRepository
	photocopierRepo repository.PhotocopierRepository
	priceRepo       repository.PriceListRepository
	clock           clock.Clock
}

// NewBusinessService construye el servicio.
func NewBusinessService(
	access *Service,
	businessRepo repository.BusinessRepository,
	roleRepo repository.UserBusinessRoleRepository,
	photocopierRepo repository.PhotocopierRepository,
	priceRepo repository.PriceListRepository,
	clk clock.Clock,
) *BusinessService {
	return &BusinessService{
		access:          access,
		businessRepo:    businessRepo,
		roleRepo:        roleRepo,
		photocopierRepo: photocopierRepo,
		priceRepo:       priceRepo,
		clock:           clk,
	}
}

// CreateBusiness crea el negocio; quien lo crea queda como dueño y admin.
func (s *BusinessService) CreateBusiness(ctx context.Context, userID string, in dto.CreateBusinessRequest) (*dto.BusinessResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := s.clock.Now()
	b := &entity.Business{Name: name, OwnerID: userID, CreatedAt: now, UpdatedAt: now}
	if err := s.businessRepo.Create(ctx, b); err != nil {
		return nil, domain.Persistence("create business", err)
	}
	role := &entity.UserBusinessRole{UserID: userID, BusinessID: b.ID, Role: entity.RoleAdmin, CreatedAt: now, UpdatedAt: now}
	if err := s.roleRepo.Upsert(ctx, role); err != nil {
		return nil, domain.Persistence("assign owner role", err)
	}
	return toBusinessResponse(b), nil
}

// ListBusinesses negocios del usuario (dueño o miembro).
func (s *BusinessService) ListBusinesses(ctx context.Context, userID string) ([]dto.BusinessResponse, error) {
	list, err := s.businessRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("list businesses", err)
	}
	out := make([]dto.BusinessResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *toBusinessResponse(b))
	}
	return out, nil
}

// AssignRole inserta o reemplaza el rol de un usuario (solo admin).
func (s *BusinessService) AssignRole(ctx context.Context, actorID, businessID string, in dto.AssignRoleRequest) (*dto.RoleResponse, error) {
	role, err := authz.ParseRole(in.Role)
	if err != nil {
		return nil, domain.Invalid("role", err.Error())
	}
	if in.UserID == "" {
		return nil, domain.Invalid("user_id", "requerido")
	}
	if err := s.access.AuthorizeBusiness(ctx, actorID, businessID, entity.RoleAdmin); err != nil {
		return nil, err
	}
	b, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, domain.Persistence("get business", err)
	}
	if b != nil && b.OwnerID == in.UserID && role != entity.RoleAdmin {
		return nil, domain.Invalid("role", "el dueño del negocio conserva el rol admin")
	}
	now := s.clock.Now()
	r := &entity.UserBusinessRole{UserID: in.UserID, BusinessID: businessID, Role: role, CreatedAt: now, UpdatedAt: now}
	if err := s.roleRepo.Upsert(ctx, r); err != nil {
		return nil, domain.Persistence("upsert role", err)
	}
	return toRoleResponse(r), nil
}

// RemoveRole quita el rol de un usuario (solo admin). El dueño no puede perder su rol.
func (s *BusinessService) RemoveRole(ctx context.Context, actorID, businessID, userID string) error {
	if err := s.access.AuthorizeBusiness(ctx, actorID, businessID, entity.RoleAdmin); err != nil {
		return err
	}
	b, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return domain.Persistence("get business", err)
	}
	if b != nil && b.OwnerID == userID {
		return domain.Invalid("user_id", "el dueño del negocio conserva el rol admin")
	}
	if err := s.roleRepo.Delete(ctx, userID, businessID); err != nil {
		return domain.Persistence("delete role", err)
	}
	return nil
}

// ListRoles roles del negocio (viewer).
func (s *BusinessService) ListRoles(ctx context.Context, actorID, businessID string) ([]dto.RoleResponse, error) {
	if err := s.access.AuthorizeBusiness(ctx, actorID, businessID, entity.RoleViewer); err != nil {
		return nil, err
	}
	list, err := s.roleRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, domain.Persistence("list roles", err)
	}
	out := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toRoleResponse(r))
	}
	return out, nil
}

// CreatePhotocopier alta de fotocopiadora (admin). El dueño por defecto es quien la crea.
func (s *BusinessService) CreatePhotocopier(ctx context.Context, actorID, businessID string, in dto.CreatePhotocopierRequest) (*dto.PhotocopierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if err := s.access.AuthorizeBusiness(ctx, actorID, businessID, entity.RoleAdmin); err != nil {
		return nil, err
	}
	owner := in.OwnerID
	if owner == "" {
		owner = actorID
	}
	now := s.clock.Now()
	pc := &entity.Photocopier{BusinessID: businessID, OwnerID: owner, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.photocopierRepo.Create(ctx, pc); err != nil {
		return nil, domain.Persistence("create photocopier", err)
	}
	return toPhotocopierResponse(pc), nil
}

// ListPhotocopiers fotocopiadoras del negocio (viewer).
func (s *BusinessService) ListPhotocopiers(ctx context.Context, actorID, businessID string) ([]dto.PhotocopierResponse, error) {
	if err := s.access.AuthorizeBusiness(ctx, actorID, businessID, entity.RoleViewer); err != nil {
		return nil, err
	}
	list, err := s.photocopierRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, domain.Persistence("list photocopiers", err)
	}
	out := make([]dto.PhotocopierResponse, 0, len(list))
	for _, pc := range list {
		out = append(out, *toPhotocopierResponse(pc))
	}
	return out, nil
}

// UpdatePhotocopier renombra la fotocopiadora (módulo configuracion, rol admin).
func (s *BusinessService) UpdatePhotocopier(ctx context.Context, actorID, photocopierID string, in dto.UpdatePhotocopierRequest) (*dto.PhotocopierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	admin := entity.RoleAdmin
	if err := s.access.Authorize(ctx, actorID, photocopierID, entity.ModuleConfiguracion, &admin); err != nil {
		return nil, err
	}
	pc, err := s.photocopierRepo.GetByID(ctx, photocopierID)
	if err != nil {
		return nil, domain.Persistence("get photocopier", err)
	}
	if pc == nil {
		return nil, domain.ErrNotFound
	}
	pc.Name = name
	pc.UpdatedAt = s.clock.Now()
	if err := s.photocopierRepo.Update(ctx, pc); err != nil {
		return nil, domain.Persistence("update photocopier", err)
	}
	return toPhotocopierResponse(pc), nil
}

// UpsertPrice crea o reemplaza un precio (admin).
func (s *BusinessService) UpsertPrice(ctx context.Context, actorID, businessID string, in dto.UpsertPriceRequest) (*dto.PriceResponse, error) {
	kind := entity.SaleKind(in.Kind)
	if !kind.Valid() {
		return nil, domain.Invalid("kind", "tipo desconocido "+in.Kind)
	}
	key := strings.TrimSpace(in.ItemKey)
	if key == "" {
		return nil, domain.Invalid("item_key", "requerido")
	}
	if kind == entity.SaleKindService && !entity.ServiceKey(key).Valid() {
		return nil, domain.Invalid("item_key", "servicio desconocido "+key)
	}
	if in.Price.IsNegative() {
		return nil, domain.Invalid("price", "no puede ser negativo")
	}
	if err := s.access.AuthorizeBusiness(ctx, actorID, businessID, entity.RoleAdmin); err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := s.clock.Now()
	e := &entity.PriceListEntry{
		BusinessID: businessID,
		Kind:       kind,
		ItemKey:    key,
		Price:      in.Price,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.priceRepo.Upsert(ctx, e); err != nil {
		return nil, domain.Persistence("upsert price", err)
	}
	return toPriceResponse(e), nil
}

// ListPrices lista de precios del negocio (viewer).
func (s *BusinessService) ListPrices(ctx context.Context, actorID, businessID string) ([]dto.PriceResponse, error) {
	if err := s.access.AuthorizeBusiness(ctx, actorID, businessID, entity.RoleViewer); err != nil {
		return nil, err
	}
	list, err := s.priceRepo.ListByBusiness(ctx, businessID, false)
	if err != nil {
		return nil, domain.Persistence("list prices", err)
	}
	out := make([]dto.PriceResponse, 0, len(list))
	for _, e := range list {
		out = append(out, *toPriceResponse(e))
	}
	return out, nil
}

func toBusinessResponse(b *entity.Business) *dto.BusinessResponse {
	return &dto.BusinessResponse{ID: b.ID, Name: b.Name, OwnerID: b.OwnerID, CreatedAt: b.CreatedAt}
}

func toRoleResponse(r *entity.UserBusinessRole) *dto.RoleResponse {
	return &dto.RoleResponse{UserID: r.UserID, BusinessID: r.BusinessID, Role: string(r.Role), UpdatedAt: r.UpdatedAt}
}

func toPhotocopierResponse(pc *entity.Photocopier) *dto.PhotocopierResponse {
	return &dto.PhotocopierResponse{ID: pc.ID, BusinessID: pc.BusinessID, OwnerID: pc.OwnerID, Name: pc.Name, CreatedAt: pc.CreatedAt}
}

func toPriceResponse(e *entity.PriceListEntry) *dto.PriceResponse {
	return &dto.PriceResponse{ID: e.ID, Kind: string(e.Kind), ItemKey: e.ItemKey, Price: e.Price, IsActive: e.IsActive, UpdatedAt: e.UpdatedAt}
}

// ToGrantResponse mapea un permiso compartido.
func ToGrantResponse(g *entity.SharedAccessGrant) dto.GrantResponse {
	return dto.GrantResponse{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		GranteeID:     g.GranteeID,
		PhotocopierID: g.PhotocopierID,
		Module:        string(g.Module),
		ExpiresAt:     g.ExpiresAt,
		IsActive:      g.IsActive,
		UpdatedAt:     g.UpdatedAt,
	}
}

// ToAccessResponse mapea una decisión de acceso.
func ToAccessResponse(d authz.Decision) dto.AccessResponse {
	out := dto.AccessResponse{Allowed: d.Allowed, Principal: d.Principal.Kind()}
	switch p := d.Principal.(type) {
	case authz.BusinessMember:
		out.Role = string(p.Role)
	case authz.SharedGrantee:
		for _, m := range p.Modules {
			out.Modules = append(out.Modules, string(m))
		}
	}
	return out
}
