package httpserver

import (
	"net/http"
	"time"

	"customer-accounts/internal/domain"
	addresssvc "customer-accounts/internal/service/address"
	"github.com/gin-gonic/gin"
)

type createAddressRequest struct {
	CustomerID string `json:"customer_id"`
	addresssvc.Input
}

type addressResponse struct {
	ID          string    `json:"address_id"`
	CustomerID  string    `json:"customer_id"`
	HouseColony string    `json:"house_colony"`
	Landmark    *string   `json:"landmark"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Pincode     string    `json:"pincode"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAddressResponse(a domain.Address) addressResponse {
	return addressResponse{
		ID:          a.ID,
		CustomerID:  a.CustomerID,
		HouseColony: a.HouseColony,
		Landmark:    a.Landmark,
		City:        a.City,
		State:       a.State,
		Pincode:     a.Pincode,
		Country:     a.Country,
		CreatedAt:   a.CreatedAt,
	}
}

type addressHandler struct {
	svc AddressService
}

func (h *addressHandler) list(c *gin.Context) {
	addresses, err := h.svc.List(c.Request.Context(), c.Query("customer_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, toAddressResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *addressHandler) get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), pathID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddressResponse(*a))
}

func (h *addressHandler) create(c *gin.Context) {
	var in createAddressRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	a, err := h.svc.Create(c.Request.Context(), actorFrom(c), in.CustomerID, in.Input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressResponse(*a))
}

func (h *addressHandler) update(c *gin.Context) {
	var p addresssvc.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badJSON(c, err)
		return
	}
	a, err := h.svc.Update(c.Request.Context(), actorFrom(c), pathID(c), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddressResponse(*a))
}

func (h *addressHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), pathID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
