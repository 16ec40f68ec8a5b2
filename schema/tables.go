package schema

// Tables is the canonical schema, in creation order. Every lookup the hot
// path performs (target identity, target address, issuer identity, type,
// active) is index-backed here.
var Tables = []Table{
	{
		Name: "punishments",
		Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "type", Type: TypeString, Size: 16, NotNull: true},
			{Name: "target_identity", Type: TypeString, Size: 36},
			{Name: "target_name", Type: TypeString, Size: 32},
			{Name: "target_address", Type: TypeString, Size: 45},
			{Name: "issuer_identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "issuer_name", Type: TypeString, Size: 32, NotNull: true},
			{Name: "reason", Type: TypeString, Size: 255},
			{Name: "origin_server", Type: TypeString, Size: 64},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "expires_at", Type: TypeTimestamp},
			{Name: "active", Type: TypeBool, NotNull: true, Default: "1"},
			{Name: "removed_at", Type: TypeTimestamp},
			{Name: "removed_by_identity", Type: TypeString, Size: 36},
			{Name: "removed_by_name", Type: TypeString, Size: 32},
			{Name: "remove_reason", Type: TypeString, Size: 255},
			{Name: "silent", Type: TypeBool, NotNull: true, Default: "0"},
			{Name: "is_address_based", Type: TypeBool, NotNull: true, Default: "0"},
		},
		Indexes: []Index{
			{Name: "idx_punishments_target", Columns: []string{"target_identity"}},
			{Name: "idx_punishments_address", Columns: []string{"target_address"}},
			{Name: "idx_punishments_issuer", Columns: []string{"issuer_identity"}},
			{Name: "idx_punishments_type", Columns: []string{"type"}},
			{Name: "idx_punishments_active", Columns: []string{"active"}},
		},
	},
	{
		Name: "players",
		Columns: []Column{
			{Name: "identity", Type: TypeString, Size: 36, NotNull: true, PrimaryKey: true},
			{Name: "last_name", Type: TypeString, Size: 32},
			{Name: "last_address", Type: TypeString, Size: 45},
			{Name: "first_join", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "last_seen", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "points", Type: TypeFloat, NotNull: true, Default: "0"},
			{Name: "address_ban_exempt", Type: TypeBool, NotNull: true, Default: "0"},
		},
		Indexes: nil,
	},
	{
		Name: "player_addresses",
		Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "address", Type: TypeString, Size: 45, NotNull: true},
			{Name: "first_seen", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "last_seen", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
		},
		Indexes: []Index{
			{Name: "uq_player_addresses", Columns: []string{"identity", "address"}, Unique: true},
		},
	},
	{
		Name: "player_names",
		Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "name", Type: TypeString, Size: 32, NotNull: true},
			{Name: "first_seen", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "last_seen", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
		},
		Indexes: []Index{
			{Name: "uq_player_names", Columns: []string{"identity", "name"}, Unique: true},
		},
	},
	{
		Name: "notes",
		Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "target_identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "target_name", Type: TypeString, Size: 32},
			{Name: "issuer_identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "issuer_name", Type: TypeString, Size: 32, NotNull: true},
			{Name: "body", Type: TypeString, Size: 255, NotNull: true},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
		},
		Indexes: []Index{
			{Name: "idx_notes_target", Columns: []string{"target_identity"}},
		},
	},
	{
		Name: "reports",
		Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "target_identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "target_name", Type: TypeString, Size: 32},
			{Name: "reporter_identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "reporter_name", Type: TypeString, Size: 32},
			{Name: "reason", Type: TypeString, Size: 255, NotNull: true},
			{Name: "status", Type: TypeString, Size: 16, NotNull: true, Default: "'pending'"},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "resolved_at", Type: TypeTimestamp},
			{Name: "resolved_by", Type: TypeString, Size: 36},
		},
		Indexes: []Index{
			{Name: "idx_reports_target", Columns: []string{"target_identity"}},
			{Name: "idx_reports_status", Columns: []string{"status"}},
		},
	},
	{
		Name: "appeals",
		Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "punishment_id", Type: TypeBigInt, NotNull: true},
			{Name: "appellant_identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "appellant_name", Type: TypeString, Size: 32},
			{Name: "body", Type: TypeString, Size: 255, NotNull: true},
			{Name: "status", Type: TypeString, Size: 16, NotNull: true, Default: "'pending'"},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
			{Name: "decided_at", Type: TypeTimestamp},
			{Name: "decided_by", Type: TypeString, Size: 36},
			{Name: "decision_reason", Type: TypeString, Size: 255},
		},
		Indexes: []Index{
			{Name: "idx_appeals_punishment", Columns: []string{"punishment_id"}},
			{Name: "idx_appeals_status", Columns: []string{"status"}},
		},
	},
	{
		Name: "audit_logs",
		Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "trace_id", Type: TypeString, Size: 64, NotNull: true},
			{Name: "actor_identity", Type: TypeString, Size: 36, NotNull: true},
			{Name: "actor_name", Type: TypeString, Size: 32},
			{Name: "action", Type: TypeString, Size: 64, NotNull: true},
			{Name: "target_identity", Type: TypeString, Size: 36},
			{Name: "detail", Type: TypeJSON},
			{Name: "error", Type: TypeString, Size: 255},
			{Name: "ip", Type: TypeString, Size: 45},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
		},
		Indexes: []Index{
			{Name: "idx_audit_trace", Columns: []string{"trace_id"}},
			{Name: "idx_audit_actor", Columns: []string{"actor_identity"}},
			{Name: "idx_audit_created", Columns: []string{"created_at"}},
		},
	},
}
