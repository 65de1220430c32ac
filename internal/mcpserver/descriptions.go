package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeEstimate() string {
	return `Estimates the asymptotic time and space complexity of a Python snippet from its syntax tree.

USE WHEN:
- Reviewing an algorithm for scalability before merging
- Comparing two implementations of the same routine
- Explaining why a function is slow on large inputs

INTERPRETING RESULTS:
- time_complexity / space_complexity are Big-O classes such as O(1), O(log n), O(n), O(n log n), O(n^2), O(2^n)
- confidence is 0-100; below 60 means the structure was ambiguous (mutual recursion, unknown callees, dynamic code)
- warnings list constructs that were skipped, such as lambda bodies or eval
- An error field means the code did not parse or exceeded a resource limit; nothing else is returned then

METRICS RETURNED:
- ast_info.loops: loop and comprehension count
- ast_info.recursive_calls: direct self-call sites
- ast_info.nested_depth: deepest loop nesting
- ast_info.functions: defined function names in order`
}

func describeSamples() string {
	return `Lists the built-in sample programs with their textbook complexity classes.

USE WHEN:
- Checking the estimator against known answers
- Picking a sample name for estimate_complexity

INTERPRETING RESULTS:
- Each entry names a program and the expected time and space classes

METRICS RETURNED:
- name, title, time, space per sample`
}
