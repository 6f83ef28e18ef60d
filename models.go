package main

import "errors"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

type ErrorResponse struct {
	Error string `json:"error" example:"Canvas resource not found. Please check if the ID is correct."`
}

type PingResponse struct {
	Message string `json:"message" example:"pong"`
}
