package echoapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/client"
	"github.com/trezcool/darasa/core/user"
)

func Test_clientApi_crud(t *testing.T) {
	env := setup(t)

	tutorUsr := createUser(t, env.userRepo, "Tee", "Cha", "tutor@test.test", "LirLir123", user.RoleTutor, nil, true)
	tutorToken := getToken(t, env.conf, tutorUsr)

	clt := createTestClient(t, env)

	tests := []httpTest{
		{
			name:     "auth required",
			method:   http.MethodGet,
			path:     "/api/clients",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "query",
			method:   http.MethodGet,
			path:     "/api/clients",
			token:    tutorToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []client.Client{clt}),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/clients/%d", clt.ID),
			token:    tutorToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, clt),
		},
		{
			name:     "retrieve missing client",
			method:   http.MethodGet,
			path:     "/api/clients/99",
			token:    tutorToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, detailErr{Detail: "Client not found"}),
		},
		{
			name:   "create rejects duplicate email",
			method: http.MethodPost,
			path:   "/api/clients",
			body: marchallObj(t, client.NewClient{
				FirstName: "Copy", LastName: "Cat", Email: clt.Email, Phone: "+27123456789",
			}),
			token:    tutorToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, detailErr{Detail: "Email already registered"}),
		},
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/api/clients",
			body: marchallObj(t, client.NewClient{
				FirstName: "Nat", LastName: "New", Email: "nat@test.test", Phone: "+27123456789",
			}),
			token:    tutorToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "update",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/clients/%d", clt.ID),
			body:     []byte(`{"notes": "prefers mornings"}`),
			token:    tutorToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/clients/%d", clt.ID),
			token:    tutorToken,
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.method == http.MethodPut && tt.wantCode == http.StatusOK {
				var res client.Client
				unmarchallBody(t, rec, &res)
				if res.Notes != "prefers mornings" {
					t.Errorf("Notes = %q, want %q", res.Notes, "prefers mornings")
				}
			}
		})
	}
}
