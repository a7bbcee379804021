/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"vertex-bank-go/internal/auth"
	"vertex-bank-go/internal/ledger"
	"vertex-bank-go/internal/models"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Vertex Bank API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		zap.L().Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleLogin takes an OAuth2 password form: username is the email.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if email == "" || password == "" {
		writeError(w, r, fmt.Errorf("%w: username and password are required", errBadRequest))
		return
	}

	user, err := s.deps.Auth.Authenticate(r.Context(), email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, _, err := s.deps.Auth.IssueToken(user.Id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, _, err := s.deps.Directory.Register(r.Context(), ledger.RegisterParams{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewUserPublic(user))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewUserPublic(userFromContext(r.Context())))
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.deps.Directory.AccountForUser(r.Context(), userFromContext(r.Context()).Id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewAccountPublic(account))
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var req models.TransactionCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.deps.Engine.PostForUser(r.Context(), userFromContext(r.Context()).Id,
		req.TransactionType, req.Amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTransactionPublic(tx))
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferCreate
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	receipt, err := s.deps.Engine.Transfer(r.Context(), userFromContext(r.Context()).Id,
		req.TargetAccountNumber, req.Amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewTransactionPublic(receipt))
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return n, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", ledger.DefaultPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transactions, err := s.deps.Engine.ListForUser(r.Context(), userFromContext(r.Context()).Id, skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]models.TransactionPublic, len(transactions))
	for i := range transactions {
		out[i] = models.NewTransactionPublic(&transactions[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	account, err := s.deps.Engine.Reconcile(r.Context(), userFromContext(r.Context()).Id)
	if err != nil && !errors.Is(err, ledger.ErrReconciliationFailed) {
		writeError(w, r, err)
		return
	}

	result := models.ReconcileResult{
		AccountId:  account.Id,
		Balance:    account.Balance.StringFixed(ledger.MoneyScale),
		Consistent: err == nil,
	}
	if err != nil {
		result.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, result)
}
