package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"order-support-mcp/internal/logging"
	"order-support-mcp/internal/model"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrDuplicateTool    = errors.New("tool already registered")
)

const schemaBaseURL = "https://order-support.local/tools/"

// Handler recibe los argumentos ya validados contra el schema.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

type Tool struct {
	Name        string
	Description string
	InputSchema string
	Handler     Handler

	schema *jsonschema.Schema
}

// ToolInfo es la forma en que tools/list publica una herramienta.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type Registry struct {
	mu       sync.RWMutex
	tools    map[string]*Tool
	order    []string
	validate *validator.Validate
	audit    AuditSink
	log      *slog.Logger
	nowFunc  func() time.Time
}

type RegistryOption func(*Registry)

func WithAuditSink(s AuditSink) RegistryOption {
	return func(r *Registry) { r.audit = s }
}

func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.nowFunc = now }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:    make(map[string]*Tool),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      slog.Default(),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.audit == nil {
		r.audit = NewLogSink(r.log)
	}
	return r
}

// Register compila el schema de entrada y agrega la herramienta.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" || t.Handler == nil {
		return fmt.Errorf("tool %q: name and handler are required", t.Name)
	}
	if t.InputSchema == "" {
		t.InputSchema = `{"type":"object"}`
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	schemaURL := schemaBaseURL + t.Name + ".schema.json"
	if err := c.AddResource(schemaURL, strings.NewReader(t.InputSchema)); err != nil {
		return fmt.Errorf("tool %q: schema load failed: %w", t.Name, err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("tool %q: schema compile failed: %w", t.Name, err)
	}
	t.schema = compiled

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = &t
	r.order = append(r.order, t.Name)
	return nil
}

// List en orden de registro.
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: json.RawMessage(t.InputSchema),
		})
	}
	return out
}

// Call valida args contra el schema, ejecuta y deja el recibo de auditoría.
// Las llamadas rechazadas también quedan registradas, con IsError.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (Result, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := r.nowFunc()
	raw, doc, err := normalizeArgs(args)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		r.record(ctx, name, args, start, Result{}, err)
		return Result{}, err
	}
	if verr := t.schema.Validate(doc); verr != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidArguments, verr)
		r.record(ctx, name, doc, start, Result{}, err)
		return Result{}, err
	}

	res, err := t.Handler(ctx, raw)
	r.record(ctx, name, doc, start, res, err)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (r *Registry) record(ctx context.Context, name string, args map[string]any, start time.Time, res Result, err error) {
	receipt := &model.ToolCallReceipt{
		ID:         uuid.NewString(),
		ToolName:   name,
		SessionID:  logging.SessionID(ctx),
		Transport:  TransportFrom(ctx),
		Arguments:  args,
		Output:     res.Text(),
		IsError:    res.IsError,
		DurationMS: r.nowFunc().Sub(start).Milliseconds(),
		Timestamp:  start.UTC(),
	}
	if err != nil {
		receipt.Output = err.Error()
		receipt.IsError = true
	}
	r.audit.Record(ctx, receipt)
}

// bind carga raw sobre dst (que ya trae los defaults) y valida los tags.
func (r *Registry) bind(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := r.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// normalizeArgs pasa por JSON para que el validador de schema vea tipos JSON puros.
func normalizeArgs(args map[string]any) (json.RawMessage, map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}
	return raw, doc, nil
}

// typed arma un Handler que decodifica sobre una copia de defaults.
func typed[T any](r *Registry, defaults T, fn func(context.Context, T) Result) Handler {
	return func(ctx context.Context, raw json.RawMessage) (Result, error) {
		args := defaults
		if err := r.bind(raw, &args); err != nil {
			return Result{}, err
		}
		return fn(ctx, args), nil
	}
}

type transportKey struct{}

func WithTransport(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, transportKey{}, name)
}

func TransportFrom(ctx context.Context) string {
	if v, ok := ctx.Value(transportKey{}).(string); ok {
		return v
	}
	return "direct"
}
