package sqlinline

const QInsertNotice = `--sql 40b6d9e8-27c5-4f12-a3b0-8e61f4d72c95
insert into notices(batch_id, severity, message)
values ($1, $2, $3);
`

const QSelectBatchNotices = `--sql ce821f46-9a03-4d78-b5e2-67d40a93c1f8
select id, batch_id, severity, message, created_at
from notices
where batch_id = $1
order by created_at asc, id asc;
`
