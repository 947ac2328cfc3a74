// Package server exposes a tamper-evident chain over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	godigest "github.com/opencontainers/go-digest"
	"go.uber.org/zap"

	"github.com/papercomputeco/seclist/pkg/chain"
	"github.com/papercomputeco/seclist/pkg/digest"
	"github.com/papercomputeco/seclist/pkg/logger"
)

// Server holds one in-memory chain and serves its operations. Every request
// goes through chain.Locked, so a reader never sees a partially rehashed chain.
type Server struct {
	config Config
	chain  *chain.Locked
	logger *zap.Logger
	app    *fiber.App
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InsertRequest adds a value at the head, or inserts it at Index when set.
type InsertRequest struct {
	Value *string `json:"value"`
	Index *int    `json:"index,omitempty"`
}

// StateResponse is returned by mutations.
type StateResponse struct {
	Length     int             `json:"length"`
	HeadDigest godigest.Digest `json:"head_digest"`
}

// ChainResponse describes the whole chain.
type ChainResponse struct {
	Length     int             `json:"length"`
	HeadDigest godigest.Digest `json:"head_digest"`
	Valid      bool            `json:"valid"`
	Entries    []chain.Entry   `json:"entries"`
}

// VerifyResponse is the result of verifying the chain.
type VerifyResponse struct {
	Valid      bool             `json:"valid"`
	Mismatches []chain.Mismatch `json:"mismatches"`
	// Tampered is the tail-most mismatching index, absent when valid.
	Tampered *int `json:"tampered,omitempty"`
}

// New creates a Server with an empty chain digested by the configured algorithm.
func New(config Config, logger *zap.Logger) (*Server, error) {
	d, err := digest.FromName(config.Digest)
	if err != nil {
		return nil, fmt.Errorf("failed to create digester: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		chain:  chain.NewLocked(d),
		logger: logger,
		app:    app,
	}
	s.routes(app)

	return s, nil
}

func (s *Server) routes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Get("/chain", s.handleGetChain)
	app.Get("/chain/verify", s.handleVerify)
	app.Get("/chain/nodes/:index", s.handleGetNode)
	app.Post("/chain/nodes", s.handleInsert)
	app.Delete("/chain/nodes/:index", s.handleRemove)
}

// Run starts serving on the configured listen address.
func (s *Server) Run() error {
	s.logger.Info("starting chain server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("digest", s.config.Digest),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting chain server", zap.String("listen", ln.Addr().String()))
	return s.app.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleGetChain(c *fiber.Ctx) error {
	entries, head, mismatches := s.chain.Snapshot()

	return c.JSON(ChainResponse{
		Length:     len(entries),
		HeadDigest: head,
		Valid:      len(mismatches) == 0,
		Entries:    entries,
	})
}

func (s *Server) handleVerify(c *fiber.Ctx) error {
	mismatches := s.chain.Verify()
	resp := VerifyResponse{
		Valid:      len(mismatches) == 0,
		Mismatches: mismatches,
	}
	if resp.Mismatches == nil {
		resp.Mismatches = []chain.Mismatch{}
	}

	if !resp.Valid {
		tampered := mismatches[len(mismatches)-1].Index
		resp.Tampered = &tampered
		s.logger.Warn("chain verification failed",
			zap.Int("mismatches", len(mismatches)),
			zap.Int("tampered", tampered),
		)
	}

	return c.JSON(resp)
}

func (s *Server) handleGetNode(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "index must be an integer"})
	}

	entry, err := s.chain.Get(index)
	if err != nil {
		return c.Status(statusFor(err, fiber.StatusNotFound)).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(entry)
}

func (s *Server) handleInsert(c *fiber.Ctx) error {
	var req InsertRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("failed to parse insert request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Value == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "value is required"})
	}

	if req.Index == nil {
		s.chain.Add(*req.Value)
	} else if err := s.chain.Insert(*req.Index, *req.Value); err != nil {
		s.logger.Debug("insert rejected", zap.Int("index", *req.Index), zap.Error(err))
		return c.Status(statusFor(err, fiber.StatusBadRequest)).JSON(ErrorResponse{Error: err.Error()})
	}

	length, head := s.chain.State()
	s.logger.Info("value inserted",
		zap.Intp("index", req.Index),
		zap.Int("length", length),
		zap.String("head_digest", logger.Short(head.String(), 23)),
	)

	return c.Status(fiber.StatusCreated).JSON(StateResponse{Length: length, HeadDigest: head})
}

func (s *Server) handleRemove(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "index must be an integer"})
	}

	if err := s.chain.Remove(index); err != nil {
		s.logger.Debug("remove rejected", zap.Int("index", index), zap.Error(err))
		return c.Status(statusFor(err, fiber.StatusBadRequest)).JSON(ErrorResponse{Error: err.Error()})
	}

	length, head := s.chain.State()
	s.logger.Info("value removed", zap.Int("index", index), zap.Int("length", length))

	return c.JSON(StateResponse{Length: length, HeadDigest: head})
}

// statusFor maps chain index errors to status and everything else to 500.
func statusFor(err error, indexStatus int) int {
	var rangeErr chain.ErrIndexOutOfRange
	if errors.As(err, &rangeErr) {
		return indexStatus
	}
	return fiber.StatusInternalServerError
}
