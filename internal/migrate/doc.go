// package migrate implements the ordered, dependency-aware transfer of the
// clubhouse dataset from the legacy Supabase project into Aurora.
//
// The core abstraction is Engine, which sequences per-table migrators in
// foreign-key order (teams → users → tasks → games → meals → inventory),
// threading KeyMaps (old id → new id) between stages and linking user rows to
// the destination's pre-existing SLUGGER directory by normalized email.
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
package migrate
