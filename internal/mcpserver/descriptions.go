package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyzeSource() string {
	return `Analyzes a single Python source text for syntax errors and lightweight static issues.

USE WHEN:
- Checking a snippet or generated code before running it
- Getting line-level findings to drive a fix

INTERPRETING RESULTS:
- A syntax error (SyntaxError, MissingColon, IndentationError) is reported alone; other checks need a parse tree
- Syntax errors are HIGH; UndefinedVariable is MEDIUM: the name is read before any assignment in scope
- UnusedVariable and DuplicateAssignment are LOW
- UnreachableCode is MEDIUM: statements after return, raise or break in the same block
- Lines and columns are 1-based

METRICS RETURNED:
- issues: type, message, line, column, severity`
}

func describeAnalyzePaths() string {
	return `Analyzes Python files and directories, honoring .gitignore and configured exclusions.

USE WHEN:
- Auditing a project or package for syntax and static issues
- Finding which files need attention before a fix pass

INTERPRETING RESULTS:
- One report entry per analyzed file, clean files included with no issues
- EngineError means the analyzer failed on that file; other files are unaffected
- issues_per_file, stddev_per_file and max_per_file describe how issues are spread

METRICS RETURNED:
- files: path and issues per file
- summary: files analyzed, files with issues, totals by type and severity`
}

func describeValidateFix() string {
	return `Validates a proposed fix against the original source before it is adopted.

USE WHEN:
- Deciding whether an automatic or LLM-written fix is safe to apply
- Checking fixed code for banned calls, infinite loops or large deletions

INTERPRETING RESULTS:
- status PASS means no errors; FAIL means at least one error
- trust_score 0-100: each failed phase costs 25, each error 12, each warning 6
- readiness: Production Ready at 90+, Safe to Run at 70+, Needs Review at 50+, otherwise Unsafe
- rollback_required is true whenever status is FAIL
- removal_ratio above 0.6 is a structural regression

METRICS RETURNED:
- status, trust_score, risk_level, readiness, errors, warnings
- categories: findings grouped as Syntax, Security, Logic, Reliability, Stability, Semantic, Maintainability, Other
- metrics: node count, line counts, removal ratio, fingerprints`
}

func describeFixSource() string {
	return `Applies rule-based line fixes to Python source and validates the result.

USE WHEN:
- Repairing missing colons, Python 2 print statements or assignments in conditions
- Commenting out unused variables and imports

INTERPRETING RESULTS:
- log lists each line that was fixed or skipped, highest line first
- adoptable is true only when validation passed; otherwise keep the original
- The fixed text is returned even when not adoptable, for review

METRICS RETURNED:
- issues found in the original, fixed source, fix log, validation result, adoptable`
}
