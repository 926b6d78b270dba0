package dto

import (
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
)

// RegisterAccountRequest defines the payload for creating a chart account.
type RegisterAccountRequest struct {
	Code        string             `json:"code" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Class       int                `json:"class" binding:"required,min=1,max=9"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID   string `json:"accountID"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	Class       int    `json:"class"`
	IsActive    bool   `json:"isActive"`
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		Code:        a.Code,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		Class:       a.Class,
		IsActive:    a.IsActive,
	}
}

// ToAccountResponses converts a slice of accounts to response DTOs.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
