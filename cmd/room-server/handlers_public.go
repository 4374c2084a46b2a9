package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"card-duel/internal/room"
)

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	}
}

func publicGamesHandler(coord *room.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": coord.Games()})
	}
}

func publicOpenGamesHandler(coord *room.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": coord.OpenGames()})
	}
}

func publicWalletHandler(coord *room.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid := chi.URLParam(r, "pid")
		balance, transactions, ok := coord.Wallet(pid)
		if !ok {
			writeHTTPError(w, http.StatusNotFound, "wallet_not_found")
			return
		}
		writeJSON(w, map[string]any{
			"pid":          pid,
			"balance":      balance,
			"transactions": transactions,
		})
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}
