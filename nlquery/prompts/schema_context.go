package prompts

// FilterContext describes the record set and the filter object the model
// must return.
const FilterContext = `Data description:

1. Each record is one seat allotment in medical postgraduate counselling:
   - rank: the candidate's exam rank (lower is better)
   - year: two digit admission year, e.g. "24" for 2024
   - quota (admission type): NS (Regular), S (In-Service),
     MQ1 (B Category), MQ2 (C Category), MQ3 (NRI/Institutional).
     All-India records use MCC quota names such as "Open Seat Quota".
   - college: e.g. "GAND(010) - GANDHI MEDICAL COLLEGE"; the code before the
     bracket is the college abbreviation
   - course: e.g. "ENT (017) - MS(ENT)"
   - category: OC (open), EWS, SC, ST, BCA, BCB, BCC, BCD, BCE
   - gender: M or F
   - flags: PH (physically handicapped), MIN (minority),
     MRC (merit reciprocity), LOCAL (local candidate)
   - phase: counselling round, R1, R2, R3, MOPUP or STRAY

2. Filter object (JSON):
   {
     "minRank": 0,          // 0 when not given
     "maxRank": 0,          // 0 when not given
     "years": [],           // values from the allowed list only
     "quotas": [],
     "colleges": [],        // full college names from the allowed list
     "courses": [],         // full course names from the allowed list
     "categories": [],
     "gender": "",          // "M", "F" or ""
     "onlyPH": false,
     "onlyMIN": false,
     "onlyMRC": false,
     "onlyLocal": false,
     "sort": "rank",        // rank, year or college
     "desc": false
   }
   An empty list means the question does not restrict that field.`

// FilterExamples are worked question/answer pairs for the filter prompt.
const FilterExamples = `Examples:

1. "female SC candidates in ENT under rank 20000 in 2024"
   {"maxRank": 20000, "years": ["24"], "courses": ["ENT (017) - MS(ENT)"],
    "categories": ["SC"], "gender": "F"}

2. "which colleges did ranks 5000 to 8000 get in management quota, sorted by college"
   {"minRank": 5000, "maxRank": 8000, "quotas": ["MQ1", "MQ2", "MQ3"], "sort": "college"}

3. "PH seats in Gandhi Medical College"
   {"colleges": ["GAND(010) - GANDHI MEDICAL COLLEGE"], "onlyPH": true}`
