package domain_test

import (
	"aviators/pkg/domain"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIDs_JSON(t *testing.T) {
	raw := uuid.MustParse("5f0c7c62-1d4e-4d4a-9b7c-3c1d2a9e8f10")
	b, err := json.Marshal(struct {
		Post domain.PostID `json:"post"`
		Lead domain.LeadID `json:"lead"`
	}{domain.PostID(raw), domain.LeadID(raw)})
	require.NoError(t, err)
	require.JSONEq(t, `{"post":"5f0c7c62-1d4e-4d4a-9b7c-3c1d2a9e8f10","lead":"5f0c7c62-1d4e-4d4a-9b7c-3c1d2a9e8f10"}`, string(b))

	var got struct {
		User domain.UserID `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"user":"5f0c7c62-1d4e-4d4a-9b7c-3c1d2a9e8f10"}`), &got))
	require.Equal(t, raw.String(), got.User.String())

	require.Error(t, json.Unmarshal([]byte(`{"user":"nope"}`), &got))
}
