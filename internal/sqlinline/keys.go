package sqlinline

const QListAPIKeys = `--sql 64c1d7e2-0b9f-4a38-8c56-f2d01a7b43e9
select key_value
from api_keys
order by position asc;
`

const QInsertAPIKey = `--sql a0f83b5d-4e26-49c1-b7d8-9035c6e21af4
insert into api_keys(key_value)
values ($1)
on conflict (key_value) do nothing;
`

const QDeleteAPIKey = `--sql e57d20c9-81b3-4f6a-a429-d6b09f135c78
delete from api_keys
where key_value = $1;
`
