// Package supabase implements [catalog.Source] against a Supabase project.
//
// The client speaks the PostgREST contract used by the hosted learning
// platform:
//
//	POST /rest/v1/rpc/get_module_tree
//	GET  /rest/v1/user_progress?select=...&user_id=eq.<id>
//	POST /rest/v1/rpc/user_has_module_access         {user_uuid, module_uuid}
//	POST /rest/v1/rpc/get_user_active_subscription   {user_uuid}
//
// Every request carries the project's anon key as `apikey` and a bearer
// token (the user's session token, or the anon key when none is set).
//
// Responses are cached through the shared [integrations.Client]. The module
// list is shared by all users; the other keys include the user id and can be
// dropped with [Client.InvalidateUser] after a purchase.
//
// [catalog.Source]: github.com/matzehuels/moduletree/pkg/catalog.Source
// [integrations.Client]: github.com/matzehuels/moduletree/pkg/integrations.Client
package supabase
