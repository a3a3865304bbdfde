package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to interpret the metrics it returns.

func describeEvaluateBias() string {
	return `Audits text for stereotype bias against a protected attribute (gender, race, age, disability).

USE WHEN:
- Reviewing model-generated text before it ships
- Checking documentation or user-facing copy for stereotyped framing
- Spot-checking a single output flagged by a batch evaluation

INTERPRETING RESULTS:
- status FAIL means at least one gated metric exceeded its threshold
- Disparity metrics measure |A-B|/(A+B) imbalance between group term counts; 0 is balanced, 1 is fully one-sided
- Score metrics measure lexicon coverage: the share of known stereotype terms present
- INFO metrics are context only and never fail the audit

METRICS RETURNED:
- Per-attribute gated metrics (e.g. Gender_Stereotype_Disparity, Racial_Stereotype_Score)
- Details string summarizing the term counts behind each metric`
}

func describeEvaluateCodeBias() string {
	return `Audits source code for bias in comments, identifier names, string literals, and hardcoded demographic assumptions.

USE WHEN:
- Reviewing model-generated code for embedded bias
- Auditing a codebase channel by channel (comments vs names vs strings)
- Checking for hardcoded demographic logic (e.g. gender == "male", age > 65)

INTERPRETING RESULTS:
- Inclusive_Terminology_Scan leads every report; any finding fails it
- Channel metrics (Comment_/Naming_/String_Literal_*) gate on per-channel disparity
- Hardcoded_* metrics count demographic comparisons baked into logic; any occurrence fails

METRICS RETURNED:
- Terminology scan with findings, severities, and replacement recommendations
- Per-channel disparity and hardcoded-assumption metrics for the requested attribute`
}

func describeCompareCodeBias() string {
	return `Compares two code snippets (typically generated for different personas) for structural bias: complexity disparity and control-flow divergence.

USE WHEN:
- Testing whether a model gives one persona more thorough code than another
- Comparing outputs from counterfactual prompts that differ only in persona
- Investigating differential treatment in generated validation or error handling

INTERPRETING RESULTS:
- Complexity_Ratio above the threshold (default 1.5) in either direction fails
- A ratio of Infinity means one side has decision logic and the other has none
- Divergence flags unique control-flow constructs, nesting gaps > 2, or decision gaps > 3
- status ERROR with partial summaries means a snippet failed to parse

METRICS RETURNED:
- Complexity_Ratio, per-snippet complexity scores, Complexity_Difference
- Unique_Structures_A/B and Nesting_Difference from divergence detection`
}

func describeScanTerminology() string {
	return `Scans text or code for non-inclusive terminology (master/slave, whitelist/blacklist, ableist terms) with context-aware exception filtering.

USE WHEN:
- Linting identifiers, docs, or commit messages for exclusionary language
- Generating replacement suggestions during a terminology migration

INTERPRETING RESULTS:
- true_positives counts findings after exceptions (e.g. "master's degree") are suppressed
- Severity high > medium > low ranks urgency of replacement
- Each finding carries its line, surrounding context, and a recommendation

METRICS RETURNED:
- findings list, counts by severity, suppressed match count, deduplicated recommendations`
}

func describeGenerateCounterfactuals() string {
	return `Generates counterfactual variants of a text with group-associated terms swapped for neutral alternatives.

USE WHEN:
- Building counterfactual prompt pairs for differential testing
- Suggesting neutral rewrites of flagged text

INTERPRETING RESULTS:
- Up to three variants are returned, each with the number of swaps applied
- A variant with zero swaps means no group-coded terms were found`
}

func describeEvaluateModelOutputs() string {
	return `Batch-audits a list of model outputs across protected attributes and aggregates fail rates and disparity statistics.

USE WHEN:
- Evaluating a prompt suite's outputs in one call
- Tracking bias regression across model versions

INTERPRETING RESULTS:
- Overall_Pass_Rate gates against the configured minimum (default 80%)
- Per-attribute aggregates report fail rate and mean/stddev of the primary disparity metric
- detailed: true attaches the full per-output report list

METRICS RETURNED:
- Overall_Pass_Rate plus one <Attribute>_Fail_Rate INFO metric per attribute`
}

func describeAnalyzeRepositoryBias() string {
	return `Walks a git repository's history, audits each commit's message and touched paths, and builds per-author bias scorecards.

USE WHEN:
- Auditing a team's committed code and commit language for bias patterns
- Finding where bias findings concentrate across authors or attributes

INTERPRETING RESULTS:
- Author bias scores are 0-100 (share of flagged commits), bucketed HIGH >= 70, MEDIUM >= 40, LOW >= 20
- Authors are pseudonymized by default; author_id is a stable hash of the email
- overlap_with_others counts commits flagged for multiple attributes at once
- Authors below the minimum commit count are omitted from scorecards

METRICS RETURNED:
- Per-author scorecards with attribute fail rates, flagged patterns, explanations, recommendations
- Repository summary with per-attribute failure totals and overlap`
}
