package sqlinline

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type schemaExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema applies every schema statement in order.
func EnsureSchema(ctx context.Context, db schemaExecutor) error {
	for _, stmt := range SchemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SchemaStatements are applied in order at process start. Each statement is
// idempotent so api, worker and CLI can all run them safely.
var SchemaStatements = []string{
	QCreateAPIKeys,
	QCreateBatches,
	QCreateJobs,
	QCreateArtifacts,
	QCreateNotices,
	QCreateAnalyticsDaily,
}

const QCreateAPIKeys = `--sql 5b2f9a41-7c83-4c1e-9f10-3d2a6e84b051
create table if not exists api_keys (
  id         uuid primary key default gen_random_uuid(),
  key_value  text not null unique,
  position   bigint generated always as identity,
  created_at timestamptz not null default now()
);
`

const QCreateBatches = `--sql 8e417c6b-52d9-4f3a-8a27-64b1f0c9ad32
create table if not exists batches (
  id         uuid primary key default gen_random_uuid(),
  class      text not null,
  model      text not null default '',
  job_count  int not null default 0,
  succeeded  int not null default 0,
  failed     int not null default 0,
  status     text not null default 'queued',
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`

const QCreateJobs = `--sql 1f6a2d83-9b47-4e05-bc61-2a90d7e4f518
create table if not exists jobs (
  id              uuid primary key default gen_random_uuid(),
  batch_id        uuid not null references batches(id) on delete cascade,
  position        int not null,
  prompt          text not null,
  class           text not null,
  quantity        int not null default 1,
  aspect_ratio    text not null default '1:1',
  model           text not null default '',
  reference_image bytea,
  upscale         boolean not null default false,
  enrich          boolean not null default false,
  status          text not null default 'queued',
  error_message   text not null default ''
);
`

const QCreateArtifacts = `--sql c3d80f24-16ab-4b9e-a573-8ef49201cb67
create table if not exists artifacts (
  id          uuid primary key default gen_random_uuid(),
  job_id      uuid not null references jobs(id) on delete cascade,
  batch_id    uuid not null references batches(id) on delete cascade,
  kind        text not null,
  model       text not null default '',
  prompt      text not null default '',
  storage_key text not null,
  mime        text not null default '',
  bytes       bigint not null default 0,
  width       int not null default 0,
  height      int not null default 0,
  upscaled    boolean not null default false,
  metadata    jsonb not null default '{}'::jsonb,
  created_at  timestamptz not null default now()
);
`

const QCreateNotices = `--sql 7a95e1c8-3f60-4d2b-b8e4-51c7a6d90f23
create table if not exists notices (
  id         uuid primary key default gen_random_uuid(),
  batch_id   uuid not null references batches(id) on delete cascade,
  severity   text not null default 'info',
  message    text not null,
  created_at timestamptz not null default now()
);
`

const QCreateAnalyticsDaily = `--sql 2d4b7f90-8a1c-4e63-95d2-c0f8361ea745
create table if not exists analytics_daily (
  day        date primary key,
  counters   jsonb not null default '{}'::jsonb,
  updated_at timestamptz not null default now()
);
`
