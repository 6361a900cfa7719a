package controlplane

import "github.com/classdesk/tenantbroker/pkg/controlplane/migrations"

// Migrations holds the embedded control-plane schema, applied with
// pkg/db.Migrate at startup. The files are embedded at the root of
// their own FS so goose's root-level *.sql glob finds them.
var Migrations = migrations.FS
