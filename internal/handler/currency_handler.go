package handler

import (
	"net/http"
	"strings"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CurrencyHandler serves official exchange rates
type CurrencyHandler struct {
	currencyService *service.CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(currencyService *service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService}
}

// RatesResponse holds UAH per one unit of each currency
type RatesResponse struct {
	USD   string `json:"USD"`
	EUR   string `json:"EUR"`
	UAH   int    `json:"UAH"`
	Date  string `json:"date"`
	Stale bool   `json:"stale,omitempty"`
}

// ConversionResponse is a foreign amount converted to UAH
type ConversionResponse struct {
	Amount string `json:"amount"`
	From   string `json:"from"`
	Rate   string `json:"rate"`
	UAH    string `json:"uah"`
	Date   string `json:"date"`
}

// GetRates godoc
// @Summary Exchange rates
// @Description Official NBU rates of USD and EUR to UAH, cached for an hour. stale is set when the bank was unreachable
// @Tags currency
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RatesResponse
// @Failure 401 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /currency/rates [get]
func (h *CurrencyHandler) GetRates(c echo.Context) error {
	rates, err := h.currencyService.GetRates(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "get exchange rates")
	}

	usd, _ := rates.Rate(domain.CurrencyUSD)
	eur, _ := rates.Rate(domain.CurrencyEUR)
	return c.JSON(http.StatusOK, RatesResponse{
		USD:   usd.String(),
		EUR:   eur.String(),
		UAH:   1,
		Date:  formatDate(rates.Date),
		Stale: rates.Stale,
	})
}

// Convert godoc
// @Summary Convert to UAH
// @Description Convert a foreign currency amount to UAH at the official rate
// @Tags currency
// @Produce json
// @Security BearerAuth
// @Param amount query number true "Amount, positive"
// @Param from query string true "Source currency" Enums(USD, EUR, UAH)
// @Success 200 {object} ConversionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /currency/convert [get]
func (h *CurrencyHandler) Convert(c echo.Context) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.QueryParam("amount")))
	if err != nil {
		return NewFieldError(c, "amount", "Must be a valid decimal number")
	}
	from, err := domain.ParseCurrency(c.QueryParam("from"))
	if err != nil {
		return NewFieldError(c, "from", "Must be one of: USD, EUR, UAH")
	}

	conversion, err := h.currencyService.Convert(c.Request().Context(), amount, from)
	if err != nil {
		return handleServiceError(c, err, "convert currency")
	}

	return c.JSON(http.StatusOK, ConversionResponse{
		Amount: conversion.Amount.String(),
		From:   string(conversion.From),
		Rate:   conversion.Rate.String(),
		UAH:    formatMoney(conversion.UAH),
		Date:   formatDate(conversion.Date),
	})
}
