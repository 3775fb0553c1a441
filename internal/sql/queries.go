package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_load.sql
var RegisterLoad string

//go:embed queries/lookup_load.sql
var LookupLoad string

//go:embed queries/update_load_status.sql
var UpdateLoadStatus string

//go:embed queries/record_shard.sql
var RecordShard string

//go:embed queries/prune_loads.sql
var PruneLoads string

//go:embed queries/analyze_claims.sql
var AnalyzeClaims string

//go:embed queries/select_services.sql
var SelectServices string

//go:embed queries/select_members.sql
var SelectMembers string

//go:embed queries/select_enrollment.sql
var SelectEnrollment string

//go:embed queries/select_providers.sql
var SelectProviders string
