package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/guildpost/guildpost/core"
	"github.com/guildpost/guildpost/internal/mvx"
	"github.com/guildpost/guildpost/service"
)

// Visibility declares who may invoke an action.
type Visibility int

const (
	// Public actions run for anonymous callers.
	Public Visibility = iota
	// Private actions require a resolved identity.
	Private
)

// CacheDirective asks the dispatcher to emit a Cache-Control header on the
// response.
type CacheDirective struct {
	SMaxAge              int
	StaleWhileRevalidate int
}

// Request is the value handed to an action: the raw HTTP request, the route
// parameters, the validated payload (when the action declares a schema) and
// the resolved caller identity.
type Request struct {
	HTTP     *http.Request
	Params   map[string]string
	Payload  any
	Identity core.Identity
}

// Response is what an action declares back to the dispatcher.
type Response struct {
	Status  int // defaults to 200
	Body    any
	Cache   *CacheDirective
	Headers map[string]string
}

// HandlerFunc executes one action.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Action binds a handler to its visibility and optional payload schema. The
// schema is a factory returning a fresh struct whose validate tags describe
// the expected payload shape.
type Action struct {
	Visibility Visibility
	Schema     func() any
	Handle     HandlerFunc
}

// Resource maps HTTP methods to actions for a single path.
type Resource map[string]Action

// Dispatcher is the per-request controller. For every call it resolves the
// action for the HTTP method, resolves the caller identity, enforces the
// private-action gate, validates the payload, invokes the action and shapes
// the response. Every failure funnels through the single error translator.
type Dispatcher struct {
	auth     *service.AuthService
	validate *validator.Validate
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher bound to the auth service.
func NewDispatcher(auth *service.AuthService, log *zap.Logger) *Dispatcher {
	v := validator.New()

	// Report violations under the wire field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Wallet address format rule: bech32 with the chain prefix.
	_ = v.RegisterValidation("erd_addr", func(fl validator.FieldLevel) bool {
		_, err := mvx.DecodeAddress(fl.Field().String())
		return err == nil
	})

	return &Dispatcher{auth: auth, validate: v, log: log}
}

// Handle mounts a resource as a single gin handler. Method resolution is
// done here rather than in the router so that unregistered verbs produce a
// 405 with the Allow header.
func (d *Dispatcher) Handle(res Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, ok := res[c.Request.Method]
		if !ok {
			d.methodNotAllowed(c, res)
			return
		}

		identity := d.resolveIdentity(c)

		if action.Visibility == Private && identity.Anonymous() {
			d.fail(c, &core.AuthenticationError{Message: "Not Authenticated"})
			return
		}

		req := &Request{
			HTTP:     c.Request,
			Params:   routeParams(c),
			Identity: identity,
		}

		if action.Schema != nil {
			payload := action.Schema()
			if err := d.bindAndValidate(c, payload); err != nil {
				d.fail(c, err)
				return
			}
			req.Payload = payload
		}

		resp, err := action.Handle(c.Request.Context(), req)
		if err != nil {
			d.fail(c, err)
			return
		}
		d.write(c, resp)
	}
}

// bindAndValidate merges the JSON body and the query string into the schema
// struct and validates it, collecting every violation rather than stopping
// at the first. Unknown extra fields are tolerated.
func (d *Dispatcher) bindAndValidate(c *gin.Context, payload any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, payload); err != nil {
			return &core.ValidationError{Details: []core.FieldError{
				{Field: "body", Rule: "json", Message: "malformed JSON body"},
			}}
		}
	}

	if len(c.Request.URL.RawQuery) > 0 {
		if err := c.ShouldBindQuery(payload); err != nil {
			return &core.ValidationError{Details: []core.FieldError{
				{Field: "query", Rule: "binding", Message: "malformed query parameters"},
			}}
		}
	}

	if err := d.validate.Struct(payload); err != nil {
		var violations validator.ValidationErrors
		if !errors.As(err, &violations) {
			return fmt.Errorf("payload validation failed: %w", err)
		}

		details := make([]core.FieldError, 0, len(violations))
		for _, violation := range violations {
			details = append(details, core.FieldError{
				Field:   violation.Field(),
				Rule:    violation.Tag(),
				Message: fmt.Sprintf("%s failed on the %q rule", violation.Field(), violation.Tag()),
			})
		}
		return &core.ValidationError{Details: details}
	}
	return nil
}

// write shapes a successful action response: status (default 200), optional
// cache directive and extra headers, JSON body.
func (d *Dispatcher) write(c *gin.Context, resp *Response) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	if resp.Cache != nil {
		c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
			resp.Cache.SMaxAge, resp.Cache.StaleWhileRevalidate))
	}
	for name, value := range resp.Headers {
		c.Header(name, value)
	}

	if resp.Body == nil {
		c.Status(status)
		return
	}
	c.JSON(status, resp.Body)
}

func (d *Dispatcher) methodNotAllowed(c *gin.Context, res Resource) {
	allowed := make([]string, 0, len(res))
	for method := range res {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)

	c.Header("Allow", strings.Join(allowed, ", "))
	c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
}

func routeParams(c *gin.Context) map[string]string {
	if len(c.Params) == 0 {
		return nil
	}
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	return params
}
