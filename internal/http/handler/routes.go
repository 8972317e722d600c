package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/analytics"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/concierge"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/service"
)

// Services bundles everything the HTTP layer dispatches to.
type Services struct {
	Contacts  service.ContactService
	Products  service.ProductService
	Nodes     service.NodeService
	Board     *service.PipelineBoard
	Dashboard *service.DashboardService
	Concierge *concierge.Client
}

// RegisterRoutes attaches the HTTP routes to the Fiber app. Handlers stay
// thin: parse, dispatch, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/contacts", ListContacts(svcs.Contacts))
	app.Post("/contacts", CreateContact(svcs.Contacts))
	app.Get("/contacts/:id", GetContact(svcs.Contacts))
	app.Patch("/contacts/:id", UpdateContact(svcs.Contacts))
	app.Delete("/contacts/:id", DeleteContact(svcs.Contacts))

	app.Get("/products", ListProducts(svcs.Products))
	app.Post("/products", CreateProduct(svcs.Products))
	app.Get("/products/:id", GetProduct(svcs.Products))
	app.Patch("/products/:id", UpdateProduct(svcs.Products))
	app.Delete("/products/:id", DeleteProduct(svcs.Products))
	app.Post("/products/:id/image", UploadProductImage(svcs.Products))

	app.Get("/nodes", ListNodes(svcs.Nodes))
	app.Post("/nodes/folders", CreateFolder(svcs.Nodes))
	app.Post("/nodes/files", UploadNodeFile(svcs.Nodes))
	app.Patch("/nodes/:id", PatchNode(svcs.Nodes))
	app.Delete("/nodes/:id", DeleteNode(svcs.Nodes))
	app.Get("/nodes/:id/url", NodeFileURL(svcs.Nodes))

	app.Get("/pipeline", GetBoard(svcs.Board))
	app.Post("/pipeline", CreateCard(svcs.Board))
	app.Patch("/pipeline/:id", UpdateCard(svcs.Board))
	app.Delete("/pipeline/:id", DeleteCard(svcs.Board))
	app.Post("/pipeline/:id/move", MoveCard(svcs.Board))

	app.Get("/dashboard", GetDashboard(svcs.Dashboard))

	app.Post("/concierge/message", SendConciergeMessage(svcs.Concierge))
}

// HealthCheck reports readiness: it pings the database with a short
// timeout.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the unconditional liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

// ---- contacts ----

func ListContacts(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func CreateContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ContactInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		contact, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(contact)
	}
}

func GetContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contact, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(contact)
	}
}

func UpdateContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ContactInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		contact, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(contact)
	}
}

func DeleteContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ---- products ----

func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func CreateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProductInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProductInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		p, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

func DeleteProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadProductImage accepts multipart/form-data with field name "file".
func UploadProductImage(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		p, err := svc.UploadImage(c.UserContext(), c.Params("id"), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// ---- nodes ----

func ListNodes(svc service.NodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var parentID *string
		if v := c.Query("parent_id"); v != "" {
			parentID = &v
		}
		items, err := svc.ListChildren(c.UserContext(), parentID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

type createFolderRequest struct {
	Title    string  `json:"title"`
	ParentID *string `json:"parent_id"`
}

func CreateFolder(svc service.NodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		folder, err := svc.CreateFolder(c.UserContext(), req.ParentID, req.Title)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	}
}

// UploadNodeFile accepts multipart/form-data: field "file" plus optional
// "title", "parent_id" and "product_id" form values. A missing title falls
// back to the original filename.
func UploadNodeFile(svc service.NodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		title := c.FormValue("title")
		if title == "" {
			title = fh.Filename
		}
		var parentID, productID *string
		if v := c.FormValue("parent_id"); v != "" {
			parentID = &v
		}
		if v := c.FormValue("product_id"); v != "" {
			productID = &v
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		node, err := svc.CreateFile(c.UserContext(), service.CreateFileRequest{
			ParentID:         parentID,
			Title:            title,
			ProductID:        productID,
			Reader:           f,
			OriginalFilename: fh.Filename,
			ContentType:      ct,
			Size:             fh.Size,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(node)
	}
}

type patchNodeRequest struct {
	Title    *string `json:"title"`
	ParentID *string `json:"parent_id"`
	Move     bool    `json:"move"`
}

// PatchNode handles rename (title set) and move (move flag set; a nil
// parent_id then means root) in one endpoint.
func PatchNode(svc service.NodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req patchNodeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		id := c.Params("id")

		if req.Title == nil && !req.Move {
			return writeError(c, fiber.StatusBadRequest, "NOTHING_TO_DO", "provide title or move")
		}
		if req.Title != nil {
			if err := svc.Rename(c.UserContext(), id, *req.Title); err != nil {
				return respondError(c, err)
			}
		}
		if req.Move {
			if err := svc.Move(c.UserContext(), id, req.ParentID); err != nil {
				return respondError(c, err)
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func DeleteNode(svc service.NodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func NodeFileURL(svc service.NodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.FileURL(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// ---- pipeline ----

// boardColumn is one kanban column in the board response.
type boardColumn struct {
	Stage model.PipelineStage `json:"stage"`
	Label string              `json:"label"`
	Cards []model.Opportunity `json:"cards"`
}

func GetBoard(board *service.PipelineBoard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := board.Load(c.UserContext()); err != nil {
			return respondError(c, err)
		}
		grouped := board.Board()

		columns := make([]boardColumn, 0, len(model.Stages))
		for _, s := range model.Stages {
			columns = append(columns, boardColumn{Stage: s, Label: s.Label(), Cards: grouped[s]})
		}
		return c.JSON(fiber.Map{"columns": columns})
	}
}

type createCardRequest struct {
	Stage model.PipelineStage `json:"pipeline_stage"`
	service.CardInput
}

func CreateCard(board *service.PipelineBoard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCardRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		card, err := board.CreateCard(c.UserContext(), req.Stage, req.CardInput)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(card)
	}
}

func UpdateCard(board *service.PipelineBoard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CardInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		card, err := board.UpdateCard(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(card)
	}
}

func DeleteCard(board *service.PipelineBoard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := board.DeleteCard(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type moveCardRequest struct {
	Stage model.PipelineStage `json:"pipeline_stage"`
}

func MoveCard(board *service.PipelineBoard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req moveCardRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		if err := board.MoveCard(c.UserContext(), c.Params("id"), req.Stage); err != nil {
			return respondError(c, err)
		}
		card, _ := board.Card(c.Params("id"))
		return c.JSON(card)
	}
}

// ---- dashboard ----

func GetDashboard(svc *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng := analytics.Range(c.Query("range", string(analytics.Range30d)))
		report, err := svc.Report(c.UserContext(), rng)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	}
}

// ---- concierge ----

func SendConciergeMessage(cli *concierge.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var msg concierge.Message
		if err := c.BodyParser(&msg); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		reply, err := cli.Send(c.UserContext(), msg)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"reply": reply})
	}
}
