package httpserver

import (
	"net/http"
	"time"

	"customer-accounts/internal/domain"
	customersvc "customer-accounts/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type customerResponse struct {
	ID        string            `json:"customer_id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	CreatedAt time.Time         `json:"created_at"`
	Addresses []addressResponse `json:"addresses"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	addresses := make([]addressResponse, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		addresses = append(addresses, toAddressResponse(a))
	}
	return customerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		Addresses: addresses,
	}
}

type customerHandler struct {
	svc CustomerService
}

func (h *customerHandler) register(c *gin.Context) {
	var in customersvc.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	created, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(*created))
}

func (h *customerHandler) login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	res, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *customerHandler) list(c *gin.Context) {
	customers, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, cust := range customers {
		out = append(out, toCustomerResponse(cust))
	}
	c.JSON(http.StatusOK, out)
}

func (h *customerHandler) get(c *gin.Context) {
	cust, err := h.svc.Get(c.Request.Context(), pathID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(*cust))
}

// update serves both PUT and PATCH; only fields present in the body change.
func (h *customerHandler) update(c *gin.Context) {
	var in customersvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	cust, err := h.svc.Update(c.Request.Context(), actorFrom(c), pathID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(*cust))
}

func (h *customerHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), pathID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
