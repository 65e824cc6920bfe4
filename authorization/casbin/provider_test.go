package casbin_test

import (
	"context"
	"testing"

	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/nasermirzaei89/labbook/authorization"
	"github.com/nasermirzaei89/labbook/authorization/casbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthorizationProvider_NilAdapter(t *testing.T) {
	t.Parallel()

	_, err := casbin.NewAuthorizationProvider(nil)
	require.Error(t, err)
}

func TestAuthorizationProvider_CheckAccess_EmptyObject(t *testing.T) {
	t.Parallel()

	provider, err := casbin.NewAuthorizationProvider(stringadapter.NewAdapter("p, admins, domain1, -, manage\n"))
	require.NoError(t, err)

	ctx := context.Background()

	err = provider.AddToGroup(ctx, "alice", "admins")
	require.NoError(t, err)

	res, err := provider.CheckAccess(ctx, authorization.CheckAccessRequest{
		Subject: "alice",
		Domain:  "domain1",
		Action:  "manage",
	})
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestAuthorizationProvider_AddPolicyFromCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr any
	}{
		{
			name: "policies and groups",
			content: `# readers
p, readers, domain1, *, read

g, alice, readers
`,
		},
		{
			name:    "unknown policy type",
			content: "x, readers, domain1, *, read\n",
			wantErr: &casbin.UnknownPolicyTypeError{},
		},
		{
			name:    "policy with missing fields",
			content: "p, readers, domain1\n",
			wantErr: &casbin.MalformedPolicyError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider, err := casbin.NewAuthorizationProvider(stringadapter.NewAdapter("# empty\n"))
			require.NoError(t, err)

			ctx := context.Background()

			err = provider.AddPolicyFromCSV(ctx, tt.content)

			switch target := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)

				res, err := provider.CheckAccess(ctx, authorization.CheckAccessRequest{
					Subject: "alice",
					Domain:  "domain1",
					Object:  "experiments:1",
					Action:  "read",
				})
				require.NoError(t, err)
				assert.True(t, res.Allowed)
			case *casbin.UnknownPolicyTypeError:
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "x", target.PolicyType)
			case *casbin.MalformedPolicyError:
				require.ErrorAs(t, err, &target)
				assert.Equal(t, 1, target.Line)
			}
		})
	}
}
