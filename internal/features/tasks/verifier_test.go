package tasks

import (
	"testing"

	"github.com/mymmrac/telego"
)

func TestIsSubscribedStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{telego.MemberStatusMember, true},
		{telego.MemberStatusAdministrator, true},
		{telego.MemberStatusCreator, true},
		{telego.MemberStatusLeft, false},
		{telego.MemberStatusBanned, false},
		{telego.MemberStatusRestricted, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isSubscribedStatus(tt.status); got != tt.want {
			t.Errorf("isSubscribedStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseChatID(t *testing.T) {
	tests := []struct {
		input    string
		wantID   int64
		wantName string
	}{
		{"-1001234567890", -1001234567890, ""},
		{"42", 42, ""},
		{"@mychannel", 0, "@mychannel"},
		{"mychannel", 0, "@mychannel"},
		{"  @spaced  ", 0, "@spaced"},
	}
	for _, tt := range tests {
		got := parseChatID(tt.input)
		if got.ID != tt.wantID || got.Username != tt.wantName {
			t.Errorf("parseChatID(%q) = {ID:%d, Username:%q}, want {ID:%d, Username:%q}",
				tt.input, got.ID, got.Username, tt.wantID, tt.wantName)
		}
	}
}
