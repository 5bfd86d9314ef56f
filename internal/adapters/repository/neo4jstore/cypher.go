package neo4jstore

var schemaStatements = []string{
	`CREATE CONSTRAINT company_urn IF NOT EXISTS FOR (c:Company) REQUIRE c.urn IS UNIQUE`,
	`CREATE CONSTRAINT employee_urn IF NOT EXISTS FOR (e:Employee) REQUIRE e.urn IS UNIQUE`,
	`CREATE CONSTRAINT transition_id IF NOT EXISTS FOR (t:Transition) REQUIRE t.id IS UNIQUE`,
	`CREATE CONSTRAINT skill_name IF NOT EXISTS FOR (s:Skill) REQUIRE s.name IS UNIQUE`,
	`CREATE CONSTRAINT school_name IF NOT EXISTS FOR (s:School) REQUIRE s.name IS UNIQUE`,
	`CREATE INDEX transition_date IF NOT EXISTS FOR (t:Transition) ON (t.date)`,
}

const mergeCompanies = `
UNWIND $companies AS c
MERGE (n:Company {urn: c.urn})
SET n += c.props`

// WorkedAt edges of each employee are replaced, so re-ingesting a profile never duplicates them.
const mergeEmployees = `
UNWIND $employees AS e
MERGE (p:Employee {urn: e.urn})
SET p.name = e.name, p.headline = e.headline
WITH p, e
OPTIONAL MATCH (p)-[old:WORKED_AT]->()
DELETE old
WITH DISTINCT p, e
UNWIND e.edges AS w
MATCH (c:Company {urn: w.company})
CREATE (p)-[:WORKED_AT {seq: w.seq, title: w.title, start: w.start, end: w.end, display: w.display}]->(c)`

// Skills and schools are shared nodes; an employee's links to them are replaced.
const mergeSkills = `
UNWIND $employees AS e
MATCH (p:Employee {urn: e.urn})
OPTIONAL MATCH (p)-[old:HAS_SKILL]->(:Skill)
DELETE old
WITH DISTINCT p, e
UNWIND e.skills AS name
MERGE (s:Skill {name: name})
MERGE (p)-[:HAS_SKILL]->(s)`

const mergeEducation = `
UNWIND $employees AS e
MATCH (p:Employee {urn: e.urn})
OPTIONAL MATCH (p)-[old:ATTENDED]->(:School)
DELETE old
WITH DISTINCT p, e
UNWIND e.education AS d
MERGE (s:School {name: d.school})
CREATE (p)-[:ATTENDED {seq: d.seq, degree: d.degree, field: d.field, start: d.start, end: d.end}]->(s)`

const mergeTransitions = `
UNWIND $events AS t
MERGE (x:Transition {id: t.id})
ON CREATE SET x += t.props
WITH x, t
MATCH (f:Company {urn: t.props.from}), (d:Company {urn: t.props.to})
MERGE (x)-[:FROM]->(f)
MERGE (x)-[:TO]->(d)
WITH x, t
MATCH (p:Employee {urn: t.props.profile})
MERGE (p)-[:MOVED]->(x)`

const readCompanyURNs = `
MATCH (c:Company) RETURN c.urn AS urn ORDER BY urn`

const readProjectionEdges = `
MATCH (t:Transition)
WHERE ($start IS NULL OR t.date >= $start) AND ($end IS NULL OR t.date < $end) AND t.from <> t.to
RETURN t.from AS from, t.to AS to, count(*) AS weight
ORDER BY from, to`

const readCompanies = `
MATCH (c:Company) RETURN properties(c) AS company ORDER BY c.urn`

const readEmployees = `
MATCH (p:Employee)
OPTIONAL MATCH (p)-[w:WORKED_AT]->(c:Company)
WITH p, w, c ORDER BY w.seq
RETURN p.urn AS urn, p.name AS name,
       collect(CASE WHEN c IS NULL THEN NULL ELSE {company: c.urn, seq: w.seq, title: w.title, start: w.start, end: w.end, display: w.display} END) AS edges
ORDER BY urn`

const readCompany = `
MATCH (c:Company {urn: $urn}) RETURN properties(c) AS company`

const readEmployee = `
MATCH (p:Employee {urn: $urn})
OPTIONAL MATCH (p)-[w:WORKED_AT]->(c:Company)
WITH p, w, c ORDER BY w.seq
WITH p, collect(CASE WHEN c IS NULL THEN NULL ELSE {company: c.urn, seq: w.seq, title: w.title, start: w.start, end: w.end, display: w.display} END) AS edges
RETURN p.urn AS urn, p.name AS name, p.headline AS headline, edges,
       [(p)-[:HAS_SKILL]->(s:Skill) | s.name] AS skills,
       [(p)-[a:ATTENDED]->(s:School) | {school: s.name, seq: a.seq, degree: a.degree, field: a.field, start: a.start, end: a.end}] AS education`

const readProfileTransitions = `
MATCH (:Employee {urn: $urn})-[:MOVED]->(t:Transition)
RETURN t.id AS id, properties(t) AS props
ORDER BY t.date DESC, t.id DESC`

const readHeadcount = `
MATCH (p:Employee)-[w:WORKED_AT]->(:Company {urn: $urn})
WHERE w.end IS NULL
RETURN count(DISTINCT p) AS n`

const readStats = `
CALL { MATCH (e:Employee) RETURN count(e) AS employees }
CALL { MATCH (c:Company) RETURN count(c) AS companies }
CALL { MATCH ()-[w:WORKED_AT]->() RETURN count(w) AS worked_at }
CALL { MATCH (t:Transition) RETURN count(t) AS transitions }
RETURN employees, companies, worked_at, transitions`
