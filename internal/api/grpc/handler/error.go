package handler

import (
	"github.com/dtroode/authcore/internal/api/apierror"
)

func handleError(err error) error {
	return apierror.FromError(err).GRPCStatus().Err()
}
