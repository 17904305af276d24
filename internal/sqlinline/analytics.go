package sqlinline

const QBumpAnalyticsCounter = `--sql 73d09c1e-48f6-4a27-bd93-2e5a61f80c47
insert into analytics_daily(day, counters, updated_at)
values ($1::date, jsonb_build_object($2::text, $3::int), now())
on conflict (day) do update
set counters = analytics_daily.counters
  || jsonb_build_object(
       $2::text,
       (coalesce((analytics_daily.counters->>$2::text)::int, 0) + $3::int)
     ),
    updated_at = now();
`

const QSelectAnalyticsSummary = `--sql 0f5a38d7-b1c4-4962-8e07-d94c26b5a1e3
select day, counters, updated_at
from analytics_daily
order by day desc
limit $1;
`
