package webapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/decoder"
	"github.com/arsipku/arsipd/pkg/pemindahan"
	"github.com/arsipku/arsipd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
)

type PemindahanController struct {
	svc *pemindahan.Service
}

func NewPemindahanController(svc *pemindahan.Service) *PemindahanController {
	return &PemindahanController{svc: svc}
}

type candidateQuery struct {
	Search  string `query:"q" validate:"max=255"`
	Filter  string `query:"filter" validate:"omitempty,oneof=all expired selected"`
	Page    int    `query:"page" validate:"gte=0"`
	PerPage int    `query:"per_page" validate:"gte=0,lte=200"`
}

func (q candidateQuery) toFilter() pemindahan.CandidateFilter {
	return pemindahan.CandidateFilter{
		Search:  q.Search,
		Mode:    pemindahan.FilterMode(q.Filter),
		Page:    q.Page,
		PerPage: q.PerPage,
	}
}

type toggleRequest struct {
	RecordID int `json:"record_id" validate:"required,gt=0"`
}

type memoRequest struct {
	Number     string `json:"nomor_berita_acara" validate:"max=191"`
	Date       string `json:"tanggal_berita_acara" validate:"max=32"`
	LegalBasis string `json:"dasar" validate:"max=1000"`
	Note       string `json:"keterangan" validate:"max=1000"`
}

type destinationRequest struct {
	Location  string `json:"lokasi_simpan" validate:"max=255"`
	BoxNumber string `json:"nomor_boks" validate:"max=64"`
	Category  string `json:"kategori_arsip" validate:"max=255"`
	Note      string `json:"keterangan" validate:"max=1000"`
}

type recordEditRequest struct {
	ArchiveType      *string `json:"jenis_arsip" validate:"omitempty,max=255"`
	InactiveYears    *int    `json:"masa_retensi_inaktif" validate:"omitempty,gte=0"`
	FinalDisposition *string `json:"nasib_akhir" validate:"omitempty,max=64"`
	BoxNumber        *string `json:"nomor_boks" validate:"omitempty,max=64"`
	DevelopmentLevel *string `json:"tingkat_perkembangan" validate:"omitempty,max=64"`
}

// OpenProcess resumes or starts the actor's transfer.
func (c *PemindahanController) OpenProcess(ctx echo.Context) error {
	actor, ok := apimiddleware.Actor(ctx)
	if !ok {
		return echo.ErrUnauthorized
	}

	view, err := c.svc.Open(ctx.Request().Context(), actor)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, view)
}

func (c *PemindahanController) GetProcess(ctx echo.Context) error {
	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.Get(ctx.Request().Context(), actor, processID)
	})
}

func (c *PemindahanController) ListCandidates(ctx echo.Context) error {
	actor, processID, err := actorAndProcessID(ctx)
	if err != nil {
		return err
	}

	q, err := bindCandidateQuery(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	page, err := c.svc.Candidates(ctx.Request().Context(), actor, processID, q.toFilter())
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, page)
}

func (c *PemindahanController) ToggleSelection(ctx echo.Context) error {
	var req toggleRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.Toggle(ctx.Request().Context(), actor, processID, req.RecordID)
	})
}

func (c *PemindahanController) SelectAll(ctx echo.Context) error {
	return c.selectVisible(ctx, c.svc.SelectAll)
}

func (c *PemindahanController) DeselectAll(ctx echo.Context) error {
	return c.selectVisible(ctx, c.svc.DeselectAll)
}

type selectFN func(ctx context.Context, actor *arsipmodel.User, processID int, filter pemindahan.CandidateFilter) (*pemindahan.View, error)

func (c *PemindahanController) selectVisible(ctx echo.Context, apply selectFN) error {
	q, err := bindCandidateQuery(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return apply(ctx.Request().Context(), actor, processID, q.toFilter())
	})
}

func (c *PemindahanController) SetMemo(ctx echo.Context) error {
	var req memoRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.SetMemo(ctx.Request().Context(), actor, processID, arsipmodel.BeritaAcara{
			Number:     req.Number,
			Date:       req.Date,
			LegalBasis: req.LegalBasis,
			Note:       req.Note,
		})
	})
}

func (c *PemindahanController) SetDestination(ctx echo.Context) error {
	var req destinationRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.SetDestination(ctx.Request().Context(), actor, processID, arsipmodel.PemindahanInfo{
			Location:  req.Location,
			BoxNumber: req.BoxNumber,
			Category:  req.Category,
			Note:      req.Note,
		})
	})
}

// SetRecordEdit takes a partial object; keys that are absent or null are not
// overridden and unknown keys are rejected.
func (c *PemindahanController) SetRecordEdit(ctx echo.Context) error {
	recordID, err := strconv.Atoi(ctx.Param("recordID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	req, err := decoder.DecodeStrict[recordEditRequest](ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, err)
	}

	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.SetRecordEdit(ctx.Request().Context(), actor, processID, recordID, arsipmodel.PerRecordEdit{
			ArchiveType:      req.ArchiveType,
			InactiveYears:    req.InactiveYears,
			FinalDisposition: req.FinalDisposition,
			BoxNumber:        req.BoxNumber,
			DevelopmentLevel: req.DevelopmentLevel,
		})
	})
}

func (c *PemindahanController) Preview(ctx echo.Context) error {
	actor, processID, err := actorAndProcessID(ctx)
	if err != nil {
		return err
	}

	previews, err := c.svc.Preview(ctx.Request().Context(), actor, processID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, previews)
}

func (c *PemindahanController) Next(ctx echo.Context) error {
	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.Next(ctx.Request().Context(), actor, processID)
	})
}

func (c *PemindahanController) Back(ctx echo.Context) error {
	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.Back(ctx.Request().Context(), actor, processID)
	})
}

func (c *PemindahanController) Retry(ctx echo.Context) error {
	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.Retry(ctx.Request().Context(), actor, processID)
	})
}

func (c *PemindahanController) StartNew(ctx echo.Context) error {
	return c.withProcess(ctx, func(actor *arsipmodel.User, processID int) (*pemindahan.View, error) {
		return c.svc.StartNew(ctx.Request().Context(), actor, processID)
	})
}

func (c *PemindahanController) withProcess(ctx echo.Context, fn func(actor *arsipmodel.User, processID int) (*pemindahan.View, error)) error {
	actor, processID, err := actorAndProcessID(ctx)
	if err != nil {
		return err
	}

	view, err := fn(actor, processID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, view)
}

func actorAndProcessID(ctx echo.Context) (*arsipmodel.User, int, error) {
	actor, ok := apimiddleware.Actor(ctx)
	if !ok {
		return nil, 0, echo.ErrUnauthorized
	}

	processID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid process id")
	}

	return actor, processID, nil
}

func bindCandidateQuery(ctx echo.Context) (candidateQuery, error) {
	var q candidateQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &q); err != nil {
		return q, err
	}

	return q, ctx.Validate(&q)
}

func bindAndValidate(ctx echo.Context, req any) error {
	if err := ctx.Bind(req); err != nil {
		return err
	}

	return ctx.Validate(req)
}
