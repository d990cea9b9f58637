package handlers

import (
	"fmt"
	"strconv"

	"productos/internal/models"
	"productos/internal/services"
	"productos/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/mo"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes, each behind its rule table.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", validation.Middleware(idRules), h.HandleGetProductByID)
	productRoutes.Post("/", validation.Middleware(createProductRules), h.HandleCreateProduct)
	productRoutes.Put("/:id", validation.Middleware(updateProductRules), h.HandleUpdateProduct)
	productRoutes.Patch("/:id", validation.Middleware(idRules), h.HandleUpdateAvailability)
	productRoutes.Delete("/:id", validation.Middleware(idRules), h.HandleDeleteProduct)
}

// HandleGetProducts lists products.
//
//	@Summary		Get a list of products
//	@Description	Returns up to 10 products, most expensive first
//	@Tags			Products
//	@Produce		json
//	@Success		200	{object}	DataResponse[[]models.Product]
//	@Failure		500	{object}	ErrorResponse
//	@Router			/products [get]
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	return respond(c, fiber.StatusOK, products)
}

// HandleGetProductByID retrieves a single product.
//
//	@Summary		Get a product by ID
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	DataResponse[models.Product]
//	@Failure		400	{object}	validation.ErrorsResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [get]
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	return h.respondFound(c, product, err, "get product")
}

// HandleCreateProduct creates a new product.
//
//	@Summary		Creates a new product
//	@Description	New products are always available
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		ProductRequest	true	"Product data"
//	@Success		201		{object}	DataResponse[models.Product]
//	@Failure		400		{object}	validation.ErrorsResponse
//	@Router			/products [post]
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	body := validation.BodyValues(c)
	product, err := h.service.CreateProduct(c.UserContext(), models.ProductFields{
		Name:  body.String("name"),
		Price: body.Float("price"),
	})
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return respond(c, fiber.StatusCreated, product)
}

// HandleUpdateProduct replaces name, price and availability of a product.
//
//	@Summary	Updates a product
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Product ID"
//	@Param		product	body		ProductUpdateRequest	true	"Product data"
//	@Success	200		{object}	DataResponse[models.Product]
//	@Failure	400		{object}	validation.ErrorsResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{id} [put]
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	body := validation.BodyValues(c)
	product, err := h.service.UpdateProduct(c.UserContext(), id, models.ProductFields{
		Name:         body.String("name"),
		Price:        body.Float("price"),
		Availability: body.Bool("availability"),
	})
	return h.respondFound(c, product, err, "update product")
}

// HandleUpdateAvailability flips the availability of a product.
//
//	@Summary	Toggles product availability
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		int	true	"Product ID"
//	@Success	200	{object}	DataResponse[models.Product]
//	@Failure	400	{object}	validation.ErrorsResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [patch]
func (h *ProductHandler) HandleUpdateAvailability(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.ToggleAvailability(c.UserContext(), id)
	return h.respondFound(c, product, err, "toggle availability")
}

// HandleDeleteProduct deletes a product.
//
//	@Summary	Deletes a product
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		int	true	"Product ID"
//	@Success	200	{object}	DataResponse[string]
//	@Failure	400	{object}	validation.ErrorsResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	deleted, err := h.service.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if deleted.IsAbsent() {
		return notFound(c)
	}
	return respond(c, fiber.StatusOK, MsgProductDeleted)
}

func (h *ProductHandler) respondFound(c *fiber.Ctx, product mo.Option[models.Product], err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p, ok := product.Get()
	if !ok {
		return notFound(c)
	}
	return respond(c, fiber.StatusOK, p)
}

// productID reads the validated :id parameter. Ids that cannot match a row
// (zero, negative) report false.
func productID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// ProductRequest documents the create body.
type ProductRequest struct {
	Name  string  `json:"name" example:"Monitor Curvo de 49 Pulgadas"`
	Price float64 `json:"price" example:"399"`
}

// ProductUpdateRequest documents the update body.
type ProductUpdateRequest struct {
	Name         string  `json:"name" example:"Monitor Curvo de 49 Pulgadas"`
	Price        float64 `json:"price" example:"399"`
	Availability bool    `json:"availability" example:"true"`
}
