package models

import (
	"github.com/go-playground/validator/v10"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

const (
	ProfilesTable    = "profiles"
	EventsTable      = "events"
	TicketTypesTable = "ticket_types"
	TicketsTable     = "tickets"
	PurchasesTable   = "purchases"
	TransfersTable   = "ticket_transfers"
	PromoCodesTable  = "promo_codes"
)

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key string) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
	}
}

// GetAuthenticatedClient returns a Supabase client that sends the given
// access token, so row-level security applies to the caller's identity.
func (su *SupabaseRepo) GetAuthenticatedClient(accessToken string) (*supabase.Client, error) {
	if su.url == "" || su.key == "" {
		return su.supabaseClient, nil
	}

	options := &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	}

	return supabase.NewClient(su.url, su.key, options)
}

// client picks the authenticated client when a token is present, the anon
// client otherwise.
func (su *SupabaseRepo) client(accessToken string) (*supabase.Client, error) {
	if accessToken == "" {
		return su.supabaseClient, nil
	}
	return su.GetAuthenticatedClient(accessToken)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
}

func MongodbNewRepo(mongodbClient *mongo.Client) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
	}
}
