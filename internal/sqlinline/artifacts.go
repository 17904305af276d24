package sqlinline

const QInsertArtifact = `--sql 6a1f8d2c-49b7-4e50-a8c3-d5720b96e1f4
insert into artifacts(
  job_id,
  batch_id,
  kind,
  model,
  prompt,
  storage_key,
  mime,
  bytes,
  width,
  height,
  upscaled,
  metadata
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
returning id;
`

const QSelectBatchArtifacts = `--sql 17e5b0a9-d234-4c86-bf51-90a7c3e6d428
select id, job_id, batch_id, kind, model, prompt, storage_key, mime, bytes, width, height, upscaled, metadata, created_at
from artifacts
where batch_id = $1
order by created_at asc;
`

const QSelectArtifact = `--sql 98c2e7f1-06ad-4b53-8d49-e3a15b7c20d6
select id, job_id, batch_id, kind, model, prompt, storage_key, mime, bytes, width, height, upscaled, metadata, created_at
from artifacts
where id = $1;
`
