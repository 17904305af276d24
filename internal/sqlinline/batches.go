package sqlinline

const QInsertBatch = `--sql 9b3e61f7-2d48-4a0c-b195-7cf3d8a2e604
insert into batches(class, model, job_count, status)
values ($1, $2, $3, 'queued')
returning id;
`

const QInsertJob = `--sql 4d72a9c0-6e15-4b83-9f47-a81b5d30c2e6
insert into jobs(
  batch_id,
  position,
  prompt,
  class,
  quantity,
  aspect_ratio,
  model,
  reference_image,
  upscale,
  enrich
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
returning id;
`

const QClaimBatch = `--sql f18c4e52-a07d-4639-8b2a-3c96d5f01e87
update batches
set status = 'running', updated_at = now()
where id = (
  select id from batches
  where status = 'queued'
  order by created_at asc
  limit 1
  for update skip locked
)
returning id, class, model, job_count;
`

const QSelectBatch = `--sql 03a9d6b1-5f28-4c74-91e0-b64f7a2d58c3
select id, class, model, job_count, succeeded, failed, status, created_at, updated_at
from batches
where id = $1;
`

const QSelectBatchJobs = `--sql b86f03d4-71e9-4a25-bc80-59d2c4a1f736
select id, batch_id, position, prompt, class, quantity, aspect_ratio, model, reference_image, upscale, enrich
from jobs
where batch_id = $1
order by position asc;
`

const QUpdateJobOutcome = `--sql 5e09c7a3-b841-4d6f-a2c5-10f97e38d4b2
update jobs
set status = $2, error_message = $3
where id = $1;
`

const QFinishBatch = `--sql d2478b60-3c5e-4f91-bd37-86a04c1e59f0
update batches
set succeeded = $2, failed = $3, status = $4, updated_at = now()
where id = $1;
`
