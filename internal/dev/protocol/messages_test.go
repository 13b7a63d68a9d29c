package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/graphdev-go/internal/core/domain"
)

func TestSubgraphConstructors_Validate(t *testing.T) {
	bad := domain.SubgraphDefinition{URL: "http://localhost:4001"}

	if _, err := AddSubgraph(false, bad); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("AddSubgraph(no name) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := UpdateSubgraph(false, bad); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("UpdateSubgraph(no name) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := RemoveSubgraph(false, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("RemoveSubgraph(\"\") error = %v, want ErrInvalidArgument", err)
	}
}

func TestSubgraphConstructors_ForwardOpaqueDefinition(t *testing.T) {
	for _, url := range []string{"u1", "localhost:4001", ""} {
		def := domain.SubgraphDefinition{Name: "A", URL: url, Schema: "not even graphql"}

		add, err := AddSubgraph(false, def)
		if err != nil {
			t.Errorf("AddSubgraph(url %q) error = %v", url, err)
			continue
		}
		if *add.Subgraph != def {
			t.Errorf("AddSubgraph(url %q) payload = %+v, want it unchanged", url, *add.Subgraph)
		}
		if _, err := UpdateSubgraph(true, def); err != nil {
			t.Errorf("UpdateSubgraph(url %q) error = %v", url, err)
		}
		if err := add.Validate(); err != nil {
			t.Errorf("Validate(url %q) error = %v", url, err)
		}
	}
}

func TestAddSubgraph_CopiesDefinition(t *testing.T) {
	def := domain.SubgraphDefinition{Name: "products", URL: "http://localhost:4001"}
	msg, err := AddSubgraph(false, def)
	if err != nil {
		t.Fatal(err)
	}
	def.URL = "http://changed"
	if msg.Subgraph.URL != "http://localhost:4001" {
		t.Error("AddSubgraph() aliases the caller's definition")
	}
}

func TestFollowerMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     FollowerMessage
		wantErr error
	}{
		{"health check", HealthCheck(false), nil},
		{"add without subgraph", FollowerMessage{Kind: FollowerAddSubgraph}, domain.ErrMissingArgument},
		{"update without name", FollowerMessage{Kind: FollowerUpdateSubgraph, Subgraph: &domain.SubgraphDefinition{URL: "http://a"}}, domain.ErrInvalidArgument},
		{"add with relative url", FollowerMessage{Kind: FollowerAddSubgraph, Subgraph: &domain.SubgraphDefinition{Name: "A", URL: "u1"}}, nil},
		{"remove without name", FollowerMessage{Kind: FollowerRemoveSubgraph}, domain.ErrInvalidArgument},
		{"unspecified", FollowerMessage{}, domain.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessage_String(t *testing.T) {
	add, _ := AddSubgraph(true, domain.SubgraphDefinition{Name: "products", URL: "http://localhost:4001", Schema: "type Query { secret: Int }"})
	remove, _ := RemoveSubgraph(false, "reviews")

	tests := []struct {
		got  string
		want string
	}{
		{HealthCheck(false).String(), "HealthCheck"},
		{GetVersion(false, "1.0.0").String(), "GetVersion(1.0.0)"},
		{add.String(), "AddSubgraph(products @ http://localhost:4001)"},
		{remove.String(), "RemoveSubgraph(reviews)"},
		{FollowerKind(99).String(), "FollowerKind(99)"},
		{VersionReply("1", "2").String(), "GetVersion(leader=1, follower=2)"},
		{SessionInfo(domain.SubgraphKeys{{Name: "a", URL: "http://a"}}).String(), "LeaderSessionInfo(1 subgraphs)"},
		{MessageReceived().String(), "MessageReceived"},
		{LeaderKind(3).String(), "LeaderKind(3)"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}

	if strings.Contains(add.String(), "secret") {
		t.Error("String() leaks the schema document")
	}
}

func TestKinds_Disjoint(t *testing.T) {
	for fk := range followerKindNames {
		if LeaderKind(fk).Valid() {
			t.Errorf("follower kind %v collides with a leader kind", fk)
		}
	}
}
