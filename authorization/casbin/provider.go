package casbin

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	casbinv2 "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	"github.com/nasermirzaei89/labbook/authorization"
)

// ObjectNone is stored in place of an empty object.
const ObjectNone = "-"

//go:embed model.conf
var casbinModelContent string

type AuthorizationProvider struct {
	enforcer *casbinv2.Enforcer
}

var _ authorization.AuthorizationProvider = (*AuthorizationProvider)(nil)

func NewAuthorizationProvider(persistAdapter persist.Adapter) (*AuthorizationProvider, error) {
	if persistAdapter == nil {
		return nil, errors.New("casbin adapter must not be nil")
	}

	casbinModel, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbinv2.NewEnforcer(casbinModel, persistAdapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)

	err = enforcer.LoadPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to load db policy: %w", err)
	}

	return &AuthorizationProvider{
		enforcer: enforcer,
	}, nil
}

func (ap *AuthorizationProvider) CheckAccess(
	_ context.Context,
	req authorization.CheckAccessRequest,
) (*authorization.CheckAccessResponse, error) {
	if req.Object == "" {
		req.Object = ObjectNone
	}

	allowed, err := ap.enforcer.Enforce(req.Subject, req.Domain, req.Object, req.Action)
	if err != nil {
		return nil, fmt.Errorf("failed to check permission: %w", err)
	}

	return &authorization.CheckAccessResponse{Allowed: allowed}, nil
}

// AddToGroup adds one grouping rule per group. Existing rules are left as they are.
func (ap *AuthorizationProvider) AddToGroup(_ context.Context, sub string, groups ...string) error {
	for _, group := range groups {
		_, err := ap.enforcer.AddGroupingPolicy(sub, group)
		if err != nil {
			return fmt.Errorf("failed to add subject %q to group %q: %w", sub, group, err)
		}
	}

	return nil
}

// AddPolicyFromCSV adds the "p" and "g" rules of a casbin policy file.
// Blank lines and lines starting with # are skipped.
func (ap *AuthorizationProvider) AddPolicyFromCSV(_ context.Context, policyContent string) error {
	reader := csv.NewReader(strings.NewReader(policyContent))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("failed to read policy content: %w", err)
		}

		line, _ := reader.FieldPos(0)

		err = ap.addRecord(line, record)
		if err != nil {
			return err
		}
	}

	return nil
}

func (ap *AuthorizationProvider) addRecord(line int, record []string) error {
	params := make([]any, 0, len(record)-1)
	for _, field := range record[1:] {
		params = append(params, strings.TrimSpace(field))
	}

	switch strings.TrimSpace(record[0]) {
	case "p":
		if len(params) != 4 {
			return &MalformedPolicyError{Line: line, Record: record}
		}

		_, err := ap.enforcer.AddPolicy(params...)
		if err != nil {
			return fmt.Errorf("failed to add policy on line %d: %w", line, err)
		}
	case "g":
		if len(params) != 2 {
			return &MalformedPolicyError{Line: line, Record: record}
		}

		_, err := ap.enforcer.AddGroupingPolicy(params...)
		if err != nil {
			return fmt.Errorf("failed to add grouping policy on line %d: %w", line, err)
		}
	default:
		return &UnknownPolicyTypeError{PolicyType: record[0]}
	}

	return nil
}
