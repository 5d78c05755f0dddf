package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/axcshop/axcshop-backend/api/responses"
	"github.com/axcshop/axcshop-backend/api/validators"
	"github.com/axcshop/axcshop-backend/internal/ledger"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
	"github.com/axcshop/axcshop-backend/pkg/logger"
	"github.com/axcshop/axcshop-backend/pkg/pagination"
)

type ledgerEntryResponse struct {
	EntryID          uuid.UUID `json:"entry_id"`
	DisplayOrderID   string    `json:"display_order_id"`
	ConsignmentID    string    `json:"consignment_id"`
	EntryType        string    `json:"entry_type"`
	CollectedMinor   int64     `json:"collected_minor"`
	DeliveryFeeMinor int64     `json:"delivery_fee_minor"`
	NetPayoutMinor   int64     `json:"net_payout_minor"`
	Reason           *string   `json:"reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type ledgerListResponse struct {
	Entries    []ledgerEntryResponse `json:"entries"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// AdminLedgerList pages through carrier settlement entries, newest first.
func AdminLedgerList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), ledger.ListInput{
			ConsignmentID:  strings.TrimSpace(r.URL.Query().Get("consignment_id")),
			DisplayOrderID: strings.TrimSpace(r.URL.Query().Get("display_order_id")),
			Limit:          limit,
			Cursor:         strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries := make([]ledgerEntryResponse, 0, len(page.Entries))
		for _, entry := range page.Entries {
			entries = append(entries, ledgerEntryResponse{
				EntryID:          entry.ID,
				DisplayOrderID:   entry.DisplayOrderID,
				ConsignmentID:    entry.ConsignmentID,
				EntryType:        string(entry.EntryType),
				CollectedMinor:   entry.CollectedMinor,
				DeliveryFeeMinor: entry.DeliveryFeeMinor,
				NetPayoutMinor:   entry.NetPayoutMinor,
				Reason:           entry.Reason,
				CreatedAt:        entry.CreatedAt,
			})
		}
		responses.WriteSuccess(w, ledgerListResponse{Entries: entries, NextCursor: page.NextCursor})
	}
}
