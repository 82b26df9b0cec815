package service

import (
	"github.com/safecity/backend/internal/domain"
)

// CrimeRepository is re-exported from domain for convenience
type CrimeRepository = domain.CrimeRepository
