package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marcnyamweya/TaxApi/internal/model"
	"github.com/marcnyamweya/TaxApi/internal/repository"
	"github.com/marcnyamweya/TaxApi/pkg/apperr"

	"gorm.io/gorm"
)

// --- DTOs ---

type CreateClientRequest struct {
	FullName                string `json:"full_name" binding:"required"`
	Email                   string `json:"email" binding:"required,email"`
	TaxIdentificationNumber string `json:"tax_identification_number" binding:"required"`
	ClientType              string `json:"client_type" binding:"required,oneof=INDIVIDUAL CORPORATE"`
}

type ClientResponse struct {
	ID                      uint   `json:"id"`
	FullName                string `json:"full_name"`
	Email                   string `json:"email"`
	TaxIdentificationNumber string `json:"tax_identification_number"`
	ClientType              string `json:"client_type"`
	CreatedAt               string `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	ListClients(ctx context.Context) ([]ClientResponse, error)
	GetClient(ctx context.Context, id uint) (ClientResponse, error)
	CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	notifier   AuditNotifier
}

func NewClientService(clientRepo repository.ClientRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, notifier AuditNotifier) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		notifier:   notifier,
	}
}

// --- Implementation ---

func (s *clientService) ListClients(ctx context.Context) ([]ClientResponse, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		res = append(res, toClientResponse(c))
	}
	return res, nil
}

func (s *clientService) GetClient(ctx context.Context, id uint) (ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, &apperr.NotFoundError{Resource: "client", ID: id}
		}
		return ClientResponse{}, fmt.Errorf("failed to fetch client: %w", err)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error) {
	if taken, err := s.clientRepo.ExistsByTIN(ctx, req.TaxIdentificationNumber); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to check tax identification number: %w", err)
	} else if taken {
		return ClientResponse{}, &apperr.ConflictError{Message: "a client with this Tax Identification Number already exists"}
	}

	if taken, err := s.clientRepo.ExistsByEmail(ctx, req.Email); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return ClientResponse{}, &apperr.ConflictError{Message: "a client with this email already exists"}
	}

	client := model.Client{
		FullName:                req.FullName,
		Email:                   req.Email,
		TaxIdentificationNumber: req.TaxIdentificationNumber,
		ClientType:              req.ClientType,
	}

	var entry model.AuditLog
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Create(txCtx, &client); err != nil {
			// The unique indexes are the last line of defense against a
			// concurrent registration with the same identity fields.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &apperr.ConflictError{Message: "a client with these identity fields already exists"}
			}
			return fmt.Errorf("failed to create client: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"client_type": client.ClientType,
			"email":       client.Email,
		})
		entry = model.AuditLog{
			EventType:   model.EventSubmission,
			Action:      model.ActionClientCreated,
			PerformedBy: fmt.Sprintf("%d", client.ID),
			Details:     string(details),
		}
		if err := s.auditRepo.Log(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return ClientResponse{}, err
	}

	if s.notifier != nil {
		s.notifier.NotifyAudit(entry)
	}

	return toClientResponse(client), nil
}

// --- Helpers ---

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:                      c.ID,
		FullName:                c.FullName,
		Email:                   c.Email,
		TaxIdentificationNumber: c.TaxIdentificationNumber,
		ClientType:              c.ClientType,
		CreatedAt:               c.CreatedAt.Format(time.RFC3339),
	}
}
