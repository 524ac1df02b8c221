package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/api/dto"
	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/repository"
	"github.com/deskline/service-desk/internal/service"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// AssetsHandler serves the asset inventory and asset types.
type AssetsHandler struct {
	service *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{service: assetService}
}

func (h *AssetsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	asset, err := h.service.CreateAsset(c.UserContext(), actor, assetInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": assetResponse(asset)})
}

func (h *AssetsHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter := repository.AssetFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseAssetStatus(raw)
		if !ok {
			return apperrors.NewValidationError("unknown asset status", map[string]any{"status": raw})
		}
		filter.Status = &status
	}
	if raw := c.Query("criticality"); raw != "" {
		criticality, ok := domain.ParseCriticality(raw)
		if !ok {
			return apperrors.NewValidationError("unknown criticality", map[string]any{"criticality": raw})
		}
		filter.Criticality = &criticality
	}
	if typeID := c.Query("asset_type_id"); typeID != "" {
		filter.AssetTypeID = &typeID
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		filter.Search = &search
	}
	assets, err := h.service.ListAssets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *AssetsHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	asset, err := h.service.GetAsset(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

func (h *AssetsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	asset, err := h.service.UpdateAsset(c.UserContext(), actor, c.Params("id"), assetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

func (h *AssetsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAsset(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AssetsHandler) CreateType(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssetTypeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	assetType, err := h.service.CreateAssetType(c.UserContext(), actor, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": assetTypeResponse(assetType)})
}

func (h *AssetsHandler) ListTypes(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	types, err := h.service.ListAssetTypes(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.AssetTypeResponse, 0, len(types))
	for i := range types {
		items = append(items, assetTypeResponse(&types[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func assetInput(req dto.AssetRequest) service.AssetInput {
	input := service.AssetInput{
		AssetTag:      req.AssetTag,
		Name:          req.Name,
		AssetTypeID:   req.AssetTypeID,
		Hostname:      req.Hostname,
		IPAddress:     req.IPAddress,
		SerialNumber:  req.SerialNumber,
		Location:      req.Location,
		OwnerID:       req.OwnerID,
		SupportTeamID: req.SupportTeamID,
		Tags:          req.Tags,
	}
	if req.Status != nil {
		status, _ := domain.ParseAssetStatus(*req.Status)
		input.Status = &status
	}
	if req.Criticality != nil {
		criticality, _ := domain.ParseCriticality(*req.Criticality)
		input.Criticality = &criticality
	}
	return input
}

func assetResponse(a *domain.Asset) dto.AssetResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.AssetResponse{
		ID:            a.ID,
		AssetTag:      a.AssetTag,
		Name:          a.Name,
		AssetTypeID:   a.AssetTypeID,
		Status:        a.Status,
		Criticality:   a.Criticality,
		Hostname:      a.Hostname,
		IPAddress:     a.IPAddress,
		SerialNumber:  a.SerialNumber,
		Location:      a.Location,
		OwnerID:       a.OwnerID,
		SupportTeamID: a.SupportTeamID,
		Tags:          tags,
		CreatedByID:   a.CreatedByID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func assetTypeResponse(t *domain.AssetType) dto.AssetTypeResponse {
	return dto.AssetTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}
